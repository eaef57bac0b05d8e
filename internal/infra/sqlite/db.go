// Package sqlite provides SQLite-based persistent storage for jobtrail.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/jobtrail/jobtrail/internal/domain"
)

// DB wraps a SQLite connection with WAL mode and migrations.
// It implements domain.ProgressStore.
type DB struct {
	db *sql.DB
}

var _ domain.ProgressStore = (*DB)(nil)

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// ─── Progression ledger ────────────────────────────────────────
		`CREATE TABLE IF NOT EXISTS user_goals (
			user_id                   TEXT PRIMARY KEY,
			mode                      TEXT NOT NULL,
			total_xp                  INTEGER NOT NULL DEFAULT 0,
			current_level             INTEGER NOT NULL DEFAULT 1,
			current_streak            INTEGER NOT NULL DEFAULT 0,
			longest_streak            INTEGER NOT NULL DEFAULT 0,
			last_activity_date        INTEGER,
			weekly_application_target INTEGER NOT NULL,
			weekly_networking_target  INTEGER NOT NULL,
			weekly_skill_hours        INTEGER NOT NULL,
			created_at                INTEGER NOT NULL,
			updated_at                INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS quests (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			template_key     TEXT NOT NULL DEFAULT '',
			title            TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			type             TEXT NOT NULL,
			category         TEXT NOT NULL,
			target           INTEGER NOT NULL,
			current_progress INTEGER NOT NULL DEFAULT 0,
			xp_reward        INTEGER NOT NULL DEFAULT 0,
			is_completed     BOOLEAN NOT NULL DEFAULT 0,
			completed_at     INTEGER,
			starts_at        INTEGER NOT NULL,
			expires_at       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quests_user ON quests(user_id, expires_at)`,

		`CREATE TABLE IF NOT EXISTS achievements (
			user_id          TEXT NOT NULL,
			achievement_id   TEXT NOT NULL,
			tier             TEXT NOT NULL,
			trigger_name     TEXT NOT NULL,
			current_progress INTEGER NOT NULL DEFAULT 0,
			target           INTEGER NOT NULL,
			unlocked         BOOLEAN NOT NULL DEFAULT 0,
			unlocked_at      INTEGER,
			PRIMARY KEY (user_id, achievement_id, tier)
		)`,

		// ─── Activity records ──────────────────────────────────────────
		`CREATE TABLE IF NOT EXISTS applications (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			company      TEXT NOT NULL DEFAULT '',
			role         TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL,
			date_applied INTEGER,
			created_at   INTEGER NOT NULL,
			updated_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS events (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			application_id TEXT REFERENCES applications(id) ON DELETE SET NULL,
			type           TEXT NOT NULL,
			title          TEXT NOT NULL DEFAULT '',
			scheduled_at   INTEGER NOT NULL,
			created_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_user ON events(user_id, scheduled_at)`,

		`CREATE TABLE IF NOT EXISTS contacts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			name       TEXT NOT NULL,
			company    TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_user ON contacts(user_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS skills (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			name         TEXT NOT NULL,
			hours_logged INTEGER NOT NULL DEFAULT 0,
			target_hours INTEGER NOT NULL DEFAULT 0,
			created_at   INTEGER NOT NULL,
			updated_at   INTEGER NOT NULL
		)`,

		// ─── Notifications ─────────────────────────────────────────────
		`CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			shown      BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// toUnix stores the zero time as 0 so it reads back as the zero time.
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

func nullableUnix(t *time.Time) sql.NullInt64 {
	if t == nil || t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0)
	return &t
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
