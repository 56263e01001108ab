package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/hsetracker/internal/model"
)

// ErrTrainingFull is returned when enrolling in a session with no seats left.
var ErrTrainingFull = errors.New("training is full")

const trainingColumns = `id, title, description, type, date, duration, max_participants,
	instructor, location, certification, status, created_at`

func scanTraining(row rowScanner) (model.Training, error) {
	var t model.Training
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Type, &t.Date, &t.Duration, &t.MaxParticipants,
		&t.Instructor, &t.Location, &t.Certification, &t.Status, &t.CreatedAt)
	return t, err
}

// CreateTraining creates a training session with no participants.
func CreateTraining(ctx context.Context, db *sql.DB, t model.Training) (*model.Training, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO trainings (title, description, type, date, duration, max_participants, instructor, location, certification, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.Type, t.Date, t.Duration, t.MaxParticipants, t.Instructor, t.Location, t.Certification, t.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating training: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting training id: %w", err)
	}

	return GetTraining(ctx, db, id)
}

// GetTraining returns a training session with its participant worker IDs.
func GetTraining(ctx context.Context, db *sql.DB, id int64) (*model.Training, error) {
	t, err := scanTraining(db.QueryRowContext(ctx,
		`SELECT `+trainingColumns+` FROM trainings WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting training: %w", err)
	}

	participants, err := trainingParticipants(ctx, db, id)
	if err != nil {
		return nil, err
	}
	t.Participants = participants
	return &t, nil
}

func trainingParticipants(ctx context.Context, db *sql.DB, id int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT worker_id FROM training_participants WHERE training_id = ? ORDER BY worker_id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var wid int64
		if err := rows.Scan(&wid); err != nil {
			return nil, fmt.Errorf("scanning participant: %w", err)
		}
		ids = append(ids, wid)
	}
	return ids, rows.Err()
}

// ListTrainings returns all sessions ordered by date, optionally filtered by a
// title or description search. Participants are included.
func ListTrainings(ctx context.Context, db *sql.DB, search string) ([]model.Training, error) {
	pattern := "%" + search + "%"
	rows, err := db.QueryContext(ctx,
		`SELECT `+trainingColumns+` FROM trainings
		 WHERE ? = '' OR title LIKE ? OR description LIKE ?
		 ORDER BY date, id`, search, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("listing trainings: %w", err)
	}

	var trainings []model.Training
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning training: %w", err)
		}
		trainings = append(trainings, t)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("listing trainings: %w", err)
	}

	// Participants are loaded after the cursor is closed; SQLite test
	// databases use a single connection.
	for i := range trainings {
		participants, err := trainingParticipants(ctx, db, trainings[i].ID)
		if err != nil {
			return nil, err
		}
		trainings[i].Participants = participants
	}
	return trainings, nil
}

// UpdateTraining updates a session's details. Participants are unchanged.
func UpdateTraining(ctx context.Context, db *sql.DB, t model.Training) error {
	result, err := db.ExecContext(ctx,
		`UPDATE trainings
		 SET title = ?, description = ?, type = ?, date = ?, duration = ?, max_participants = ?,
		     instructor = ?, location = ?, certification = ?, status = ?
		 WHERE id = ?`,
		t.Title, t.Description, t.Type, t.Date, t.Duration, t.MaxParticipants,
		t.Instructor, t.Location, t.Certification, t.Status, t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating training: %w", err)
	}
	return expectAffected(result)
}

// DeleteTraining removes a session and its enrolments.
func DeleteTraining(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM training_participants WHERE training_id = ?`, id); err != nil {
		return fmt.Errorf("deleting participants: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM trainings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting training: %w", err)
	}
	if err := expectAffected(result); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing training delete: %w", err)
	}
	return nil
}

// AddParticipant enrols an active worker. Enrolling twice is a no-op.
// It returns ErrNotFound for a missing session or worker and ErrTrainingFull
// when every seat is taken.
func AddParticipant(ctx context.Context, db *sql.DB, trainingID, workerID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var seats int
	err = tx.QueryRowContext(ctx,
		`SELECT max_participants FROM trainings WHERE id = ?`, trainingID,
	).Scan(&seats)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("getting training: %w", err)
	}

	var workers int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workers WHERE id = ? AND deleted_at IS NULL`, workerID,
	).Scan(&workers)
	if err != nil {
		return fmt.Errorf("checking worker: %w", err)
	}
	if workers == 0 {
		return ErrNotFound
	}

	var enrolled, count int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(worker_id = ?), 0), COUNT(*) FROM training_participants WHERE training_id = ?`,
		workerID, trainingID,
	).Scan(&enrolled, &count)
	if err != nil {
		return fmt.Errorf("counting participants: %w", err)
	}
	if enrolled > 0 {
		return nil
	}
	if count >= seats {
		return ErrTrainingFull
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO training_participants (training_id, worker_id) VALUES (?, ?)`, trainingID, workerID,
	); err != nil {
		return fmt.Errorf("adding participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing participant: %w", err)
	}
	return nil
}

// RemoveParticipant withdraws a worker from a session.
func RemoveParticipant(ctx context.Context, db *sql.DB, trainingID, workerID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM training_participants WHERE training_id = ? AND worker_id = ?`, trainingID, workerID,
	)
	if err != nil {
		return fmt.Errorf("removing participant: %w", err)
	}
	return expectAffected(result)
}
