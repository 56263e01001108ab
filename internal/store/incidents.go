package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/hsetracker/internal/model"
)

const incidentColumns = `i.id, i.type, i.title, i.description, i.location, i.severity, i.status,
	i.actions, i.date, i.reported_by, i.created_at, i.updated_at, COALESCE(u.username, '')`

const incidentFrom = ` FROM incidents i LEFT JOIN users u ON u.id = i.reported_by`

// IncidentFilter narrows ListIncidents. Empty fields match everything.
type IncidentFilter struct {
	Type   string
	Status string
	Search string
}

func scanIncident(row rowScanner) (model.Incident, error) {
	var i model.Incident
	err := row.Scan(&i.ID, &i.Type, &i.Title, &i.Description, &i.Location, &i.Severity, &i.Status,
		&i.Actions, &i.Date, &i.ReportedBy, &i.CreatedAt, &i.UpdatedAt, &i.ReporterName)
	return i, err
}

// CreateIncident records a new incident.
func CreateIncident(ctx context.Context, db *sql.DB, i model.Incident) (*model.Incident, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO incidents (type, title, description, location, severity, status, actions, date, reported_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.Type, i.Title, i.Description, i.Location, i.Severity, i.Status, i.Actions, i.Date, i.ReportedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating incident: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting incident id: %w", err)
	}

	return GetIncident(ctx, db, id)
}

// GetIncident returns an incident by ID.
func GetIncident(ctx context.Context, db *sql.DB, id int64) (*model.Incident, error) {
	i, err := scanIncident(db.QueryRowContext(ctx,
		`SELECT `+incidentColumns+incidentFrom+` WHERE i.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting incident: %w", err)
	}
	return &i, nil
}

// ListIncidents returns incidents matching the filter, newest first.
// Search matches title or description.
func ListIncidents(ctx context.Context, db *sql.DB, f IncidentFilter) ([]model.Incident, error) {
	var where []string
	var args []any
	if f.Type != "" {
		where = append(where, "i.type = ?")
		args = append(args, f.Type)
	}
	if f.Status != "" {
		where = append(where, "i.status = ?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		where = append(where, "(i.title LIKE ? OR i.description LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + incidentColumns + incidentFrom
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY i.date DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing incidents: %w", err)
	}
	defer rows.Close()

	var incidents []model.Incident
	for rows.Next() {
		i, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning incident: %w", err)
		}
		incidents = append(incidents, i)
	}
	return incidents, rows.Err()
}

// UpdateIncident updates everything except the reporter.
func UpdateIncident(ctx context.Context, db *sql.DB, i model.Incident) error {
	result, err := db.ExecContext(ctx,
		`UPDATE incidents
		 SET type = ?, title = ?, description = ?, location = ?, severity = ?, status = ?,
		     actions = ?, date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		i.Type, i.Title, i.Description, i.Location, i.Severity, i.Status, i.Actions, i.Date, i.ID,
	)
	if err != nil {
		return fmt.Errorf("updating incident: %w", err)
	}
	return expectAffected(result)
}

// DeleteIncident removes an incident.
func DeleteIncident(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM incidents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting incident: %w", err)
	}
	return expectAffected(result)
}
