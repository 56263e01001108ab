package model

import (
	"fmt"
	"slices"
	"time"
)

// Incident types.
const (
	IncidentAccident    = "accident"
	IncidentFire        = "fire"
	IncidentEnvironment = "environment"
)

// Incident severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Incident statuses.
const (
	IncidentNew        = "new"
	IncidentInProgress = "in_progress"
	IncidentResolved   = "resolved"
)

var (
	IncidentTypes      = []string{IncidentAccident, IncidentFire, IncidentEnvironment}
	IncidentSeverities = []string{SeverityLow, SeverityMedium, SeverityHigh}
	IncidentStatuses   = []string{IncidentNew, IncidentInProgress, IncidentResolved}
)

// Incident is a reported HSE incident.
type Incident struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	Actions     string    `json:"actions"`
	Date        string    `json:"date"`
	ReportedBy  int64     `json:"reported_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ReporterName string `json:"reporter_name,omitempty"`
}

// ValidateIncident checks the enumerated fields and the date.
func ValidateIncident(i Incident) error {
	if i.Title == "" {
		return fmt.Errorf("title required")
	}
	if !slices.Contains(IncidentTypes, i.Type) {
		return fmt.Errorf("invalid incident type %q", i.Type)
	}
	if !slices.Contains(IncidentSeverities, i.Severity) {
		return fmt.Errorf("invalid severity %q", i.Severity)
	}
	if !slices.Contains(IncidentStatuses, i.Status) {
		return fmt.Errorf("invalid status %q", i.Status)
	}
	if _, err := time.Parse(time.DateOnly, i.Date); err != nil {
		return fmt.Errorf("invalid date %q", i.Date)
	}
	return nil
}
