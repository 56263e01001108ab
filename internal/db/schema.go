package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'technician' CHECK (role IN ('admin', 'supervisor', 'technician')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS workers (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    position   TEXT NOT NULL DEFAULT '',
    shoe_size  INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE TABLE IF NOT EXISTS equipment (
    worker_id      INTEGER NOT NULL REFERENCES workers(id),
    name           TEXT NOT NULL,
    quantity       INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    reception_date TEXT NOT NULL DEFAULT '',
    validity_date  TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT '',
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (worker_id, name)
);

CREATE TABLE IF NOT EXISTS stock_items (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    category   TEXT NOT NULL DEFAULT '',
    quantity   INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    min_stock  INTEGER NOT NULL DEFAULT 0 CHECK (min_stock >= 0),
    supplier   TEXT,
    photo      BLOB,
    photo_mime TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE TABLE IF NOT EXISTS notifications (
    id         TEXT PRIMARY KEY,
    worker_id  INTEGER NOT NULL REFERENCES workers(id),
    equipment  TEXT NOT NULL,
    threshold  TEXT NOT NULL,
    severity   TEXT NOT NULL,
    title      TEXT NOT NULL,
    body       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    read_at    DATETIME
);

CREATE INDEX IF NOT EXISTS idx_notifications_unread
    ON notifications(created_at) WHERE read_at IS NULL;

CREATE TABLE IF NOT EXISTS incidents (
    id          INTEGER PRIMARY KEY,
    type        TEXT NOT NULL CHECK (type IN ('accident', 'fire', 'environment')),
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    location    TEXT NOT NULL DEFAULT '',
    severity    TEXT NOT NULL CHECK (severity IN ('low', 'medium', 'high')),
    status      TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'in_progress', 'resolved')),
    actions     TEXT NOT NULL DEFAULT '',
    date        TEXT NOT NULL,
    reported_by INTEGER NOT NULL REFERENCES users(id),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS trainings (
    id               INTEGER PRIMARY KEY,
    title            TEXT NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    type             TEXT NOT NULL DEFAULT '',
    date             TEXT NOT NULL,
    duration         INTEGER NOT NULL CHECK (duration > 0),
    max_participants INTEGER NOT NULL CHECK (max_participants > 0),
    instructor       TEXT NOT NULL DEFAULT '',
    location         TEXT NOT NULL DEFAULT '',
    certification    INTEGER NOT NULL DEFAULT 0,
    status           TEXT NOT NULL DEFAULT 'planned'
                     CHECK (status IN ('planned', 'in_progress', 'completed', 'cancelled')),
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS training_participants (
    training_id INTEGER NOT NULL REFERENCES trainings(id),
    worker_id   INTEGER NOT NULL REFERENCES workers(id),
    PRIMARY KEY (training_id, worker_id)
);

CREATE TABLE IF NOT EXISTS events (
    id          INTEGER PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    date        TEXT NOT NULL,
    time        TEXT NOT NULL,
    created_by  INTEGER NOT NULL REFERENCES users(id),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
