package model

import "time"

// Notification is a persisted in-app expiry alert.
type Notification struct {
	ID        string     `json:"id"`
	WorkerID  int64      `json:"worker_id"`
	Equipment string     `json:"equipment"`
	Threshold string     `json:"threshold"`
	Severity  string     `json:"severity"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
