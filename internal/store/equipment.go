package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/hsetracker/internal/model"
)

const equipmentColumns = `e.worker_id, e.name, e.quantity, e.reception_date, e.validity_date, e.status, e.updated_at, w.name`

func scanEquipment(rows *sql.Rows) (model.Equipment, error) {
	var e model.Equipment
	err := rows.Scan(&e.WorkerID, &e.Name, &e.Quantity, &e.ReceptionDate, &e.ValidityDate, &e.Status, &e.UpdatedAt, &e.WorkerName)
	return e, err
}

// ListWorkerEquipment returns all equipment slots of one worker, ordered by name.
func ListWorkerEquipment(ctx context.Context, db *sql.DB, workerID int64) ([]model.Equipment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+equipmentColumns+`
		 FROM equipment e JOIN workers w ON w.id = e.worker_id
		 WHERE e.worker_id = ?
		 ORDER BY e.name`, workerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing equipment: %w", err)
	}
	defer rows.Close()

	var items []model.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning equipment: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// GetEquipmentRecord returns a worker together with their equipment sheet.
// Returns nil, nil if the worker does not exist or was deleted.
func GetEquipmentRecord(ctx context.Context, db *sql.DB, workerID int64) (*model.EquipmentRecord, error) {
	worker, err := GetWorker(ctx, db, workerID)
	if err != nil {
		return nil, err
	}
	if worker == nil || worker.DeletedAt != nil {
		return nil, nil
	}

	items, err := ListWorkerEquipment(ctx, db, workerID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Equipment{}
	}
	return &model.EquipmentRecord{Worker: *worker, Equipment: items}, nil
}

// SaveEquipmentRecord upserts the given equipment slots of a worker in a
// single transaction. Slots not mentioned are left untouched.
func SaveEquipmentRecord(ctx context.Context, db *sql.DB, workerID int64, items []model.Equipment) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workers WHERE id = ? AND deleted_at IS NULL`, workerID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking worker: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	for _, e := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO equipment (worker_id, name, quantity, reception_date, validity_date)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (worker_id, name) DO UPDATE SET
			   quantity = excluded.quantity,
			   reception_date = excluded.reception_date,
			   validity_date = excluded.validity_date,
			   updated_at = CURRENT_TIMESTAMP`,
			workerID, e.Name, e.Quantity, e.ReceptionDate, e.ValidityDate,
		)
		if err != nil {
			return fmt.Errorf("saving equipment %q: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing equipment: %w", err)
	}
	return nil
}

// DeleteEquipment removes one equipment slot from a worker.
func DeleteEquipment(ctx context.Context, db *sql.DB, workerID int64, name string) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM equipment WHERE worker_id = ? AND name = ?`, workerID, name,
	)
	if err != nil {
		return fmt.Errorf("deleting equipment: %w", err)
	}
	return expectAffected(result)
}

// UpdateEquipmentStatuses writes back the derived status labels of a worker's
// equipment, keyed by equipment name.
func UpdateEquipmentStatuses(ctx context.Context, db *sql.DB, workerID int64, statuses map[string]string) error {
	if len(statuses) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for name, status := range statuses {
		_, err := tx.ExecContext(ctx,
			`UPDATE equipment SET status = ? WHERE worker_id = ? AND name = ?`,
			status, workerID, name,
		)
		if err != nil {
			return fmt.Errorf("updating status of %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing statuses: %w", err)
	}
	return nil
}

// ListAllEquipment returns every equipment slot of every active worker,
// ordered by worker and equipment name.
func ListAllEquipment(ctx context.Context, db *sql.DB) ([]model.Equipment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+equipmentColumns+`
		 FROM equipment e JOIN workers w ON w.id = e.worker_id
		 WHERE w.deleted_at IS NULL
		 ORDER BY e.worker_id, e.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing all equipment: %w", err)
	}
	defer rows.Close()

	var items []model.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning equipment: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// ListExpiring returns configured equipment of active workers whose validity
// date is on or before the given YYYY-MM-DD date, soonest first. Already
// expired items are included.
func ListExpiring(ctx context.Context, db *sql.DB, until string) ([]model.Equipment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+equipmentColumns+`
		 FROM equipment e JOIN workers w ON w.id = e.worker_id
		 WHERE w.deleted_at IS NULL
		   AND e.reception_date != '' AND e.validity_date != ''
		   AND substr(e.validity_date, 1, 10) <= ?
		 ORDER BY e.validity_date, w.name, e.name`, until,
	)
	if err != nil {
		return nil, fmt.Errorf("listing expiring equipment: %w", err)
	}
	defer rows.Close()

	var items []model.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning equipment: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
