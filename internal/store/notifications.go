package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/hsetracker/internal/model"
)

// InsertNotification stores an in-app notification. Re-inserting the same ID
// is a no-op.
func InsertNotification(ctx context.Context, db *sql.DB, n model.Notification) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO notifications (id, worker_id, equipment, threshold, severity, title, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.WorkerID, n.Equipment, n.Threshold, n.Severity, n.Title, n.Body, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// ListNotifications returns the newest notifications first, at most limit.
func ListNotifications(ctx context.Context, db *sql.DB, unreadOnly bool, limit int) ([]model.Notification, error) {
	query := `SELECT id, worker_id, equipment, threshold, severity, title, body, created_at, read_at
		 FROM notifications`
	if unreadOnly {
		query += ` WHERE read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.WorkerID, &n.Equipment, &n.Threshold, &n.Severity, &n.Title, &n.Body, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks a notification as read. Marking it twice is not an error.
func MarkNotificationRead(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET read_at = COALESCE(read_at, CURRENT_TIMESTAMP) WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return expectAffected(result)
}
