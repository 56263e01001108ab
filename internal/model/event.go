package model

import (
	"fmt"
	"time"
)

// Event is a calendar entry shown on the dashboard.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidateEvent requires a title, a YYYY-MM-DD date and an HH:MM time.
func ValidateEvent(e Event) error {
	if e.Title == "" {
		return fmt.Errorf("title required")
	}
	if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
		return fmt.Errorf("invalid date %q", e.Date)
	}
	if _, err := time.Parse("15:04", e.Time); err != nil {
		return fmt.Errorf("invalid time %q", e.Time)
	}
	return nil
}
