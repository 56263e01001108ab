package model

import (
	"fmt"
	"slices"
	"time"
)

// Training session statuses.
const (
	TrainingPlanned    = "planned"
	TrainingInProgress = "in_progress"
	TrainingCompleted  = "completed"
	TrainingCancelled  = "cancelled"
)

var TrainingStatuses = []string{TrainingPlanned, TrainingInProgress, TrainingCompleted, TrainingCancelled}

// Training is a scheduled training session or HSE activity.
// Duration is in minutes.
type Training struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Type            string    `json:"type"`
	Date            string    `json:"date"`
	Duration        int       `json:"duration"`
	MaxParticipants int       `json:"max_participants"`
	Instructor      string    `json:"instructor"`
	Location        string    `json:"location"`
	Certification   bool      `json:"certification"`
	Status          string    `json:"status"`
	Participants    []int64   `json:"participants"`
	CreatedAt       time.Time `json:"created_at"`
}

// ValidateTraining checks a training session before it is stored.
func ValidateTraining(t Training) error {
	if t.Title == "" {
		return fmt.Errorf("title required")
	}
	if _, err := time.Parse(time.DateOnly, t.Date); err != nil {
		return fmt.Errorf("invalid date %q", t.Date)
	}
	if t.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if t.MaxParticipants <= 0 {
		return fmt.Errorf("max participants must be positive")
	}
	if !slices.Contains(TrainingStatuses, t.Status) {
		return fmt.Errorf("invalid status %q", t.Status)
	}
	return nil
}
