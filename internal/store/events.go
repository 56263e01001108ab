package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/hsetracker/internal/model"
)

const eventColumns = `id, title, description, date, time, created_by, created_at`

func scanEvent(row rowScanner) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.CreatedBy, &e.CreatedAt)
	return e, err
}

// CreateEvent creates a calendar event.
func CreateEvent(ctx context.Context, db *sql.DB, e model.Event) (*model.Event, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO events (title, description, date, time, created_by) VALUES (?, ?, ?, ?, ?)`,
		e.Title, e.Description, e.Date, e.Time, e.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting event id: %w", err)
	}

	return GetEvent(ctx, db, id)
}

// GetEvent returns an event by ID.
func GetEvent(ctx context.Context, db *sql.DB, id int64) (*model.Event, error) {
	e, err := scanEvent(db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting event: %w", err)
	}
	return &e, nil
}

// ListEvents returns events on or after from (YYYY-MM-DD, empty for all) in
// chronological order.
func ListEvents(ctx context.Context, db *sql.DB, from string) ([]model.Event, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE date >= ? ORDER BY date, time, id`, from,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEvent removes an event.
func DeleteEvent(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return expectAffected(result)
}
