package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/hsetracker/internal/model"
)

// ErrNotFound is returned by write operations that target a missing row.
var ErrNotFound = errors.New("not found")

// CreateWorker creates a worker and an empty equipment slot for each of the
// given equipment types.
func CreateWorker(ctx context.Context, db *sql.DB, name, position string, shoeSize int, equipmentTypes []string) (*model.Worker, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO workers (name, position, shoe_size) VALUES (?, ?, ?)`,
		name, position, shoeSize,
	)
	if err != nil {
		return nil, fmt.Errorf("creating worker: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting worker id: %w", err)
	}

	for _, eq := range equipmentTypes {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO equipment (worker_id, name) VALUES (?, ?)`,
			id, eq,
		)
		if err != nil {
			return nil, fmt.Errorf("creating equipment slot %q: %w", eq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing worker: %w", err)
	}

	return GetWorker(ctx, db, id)
}

// GetWorker returns a worker by ID, including soft-deleted ones.
func GetWorker(ctx context.Context, db *sql.DB, id int64) (*model.Worker, error) {
	w := &model.Worker{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, position, shoe_size, created_at, deleted_at
		 FROM workers WHERE id = ?`, id,
	).Scan(&w.ID, &w.Name, &w.Position, &w.ShoeSize, &w.CreatedAt, &w.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting worker: %w", err)
	}
	return w, nil
}

// ListWorkers returns all non-deleted workers, optionally filtered by a
// case-insensitive name or position substring.
func ListWorkers(ctx context.Context, db *sql.DB, search string) ([]model.Worker, error) {
	var rows *sql.Rows
	var err error

	if search != "" {
		pattern := "%" + search + "%"
		rows, err = db.QueryContext(ctx,
			`SELECT id, name, position, shoe_size, created_at, deleted_at
			 FROM workers
			 WHERE deleted_at IS NULL AND (name LIKE ? OR position LIKE ?)
			 ORDER BY name`, pattern, pattern,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT id, name, position, shoe_size, created_at, deleted_at
			 FROM workers WHERE deleted_at IS NULL ORDER BY name`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing workers: %w", err)
	}
	defer rows.Close()

	var workers []model.Worker
	for rows.Next() {
		var w model.Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Position, &w.ShoeSize, &w.CreatedAt, &w.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning worker: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// UpdateWorker updates a worker's name, position and shoe size.
func UpdateWorker(ctx context.Context, db *sql.DB, id int64, name, position string, shoeSize int) error {
	result, err := db.ExecContext(ctx,
		`UPDATE workers SET name = ?, position = ?, shoe_size = ? WHERE id = ? AND deleted_at IS NULL`,
		name, position, shoeSize, id,
	)
	if err != nil {
		return fmt.Errorf("updating worker: %w", err)
	}
	return expectAffected(result)
}

// DeleteWorker soft-deletes a worker. Their equipment rows are kept for history.
func DeleteWorker(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE workers SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting worker: %w", err)
	}
	return expectAffected(result)
}

func expectAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
