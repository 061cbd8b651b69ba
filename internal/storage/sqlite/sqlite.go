// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. Foreign keys with ON DELETE CASCADE and CHECK constraints give
// us referential integrity inside the store itself.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/aanand-mishra/academic-records/internal/config"
	"github.com/aanand-mishra/academic-records/internal/storage"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql;
// every operation borrows a connection for the duration of the call only.
type SQLite struct {
	Db *sql.DB

	// sb builds statements with "?" placeholders, the sqlite3 format.
	sb sq.StatementBuilderType
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath and checks that it is
// reachable. It does NOT create the schema; call Initialize for that.
//
// Any failure here is reported as storage.ErrStoreUnavailable.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w: %w", storage.ErrStoreUnavailable, err)
	}

	// foreign_keys is a per-connection pragma. It is set through the DSN so
	// every pooled connection has it, but a single connection also keeps
	// writes serialised, which is all a single-user store needs.
	db.SetMaxOpenConns(1)

	// sql.Open is lazy; Ping forces the file to actually be opened.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w: %w", storage.ErrStoreUnavailable, err)
	}

	return &SQLite{
		Db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// uriPath escapes the characters SQLite treats specially in the path part
// of a file: URI. Everything else, "/" included, is passed through.
var uriPath = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// dsn builds a file: URI for the driver. The path is escaped so a name
// like "a#b.db" opens that file rather than "a".
func dsn(cfg *config.Config) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", fmt.Sprint(cfg.BusyTimeout.Milliseconds()))
	return "file:" + uriPath.Replace(cfg.StoragePath) + "?" + params.Encode()
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// Table and column names are fixed so an existing college_sms.db opens
// unchanged.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS teachers (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		name     TEXT NOT NULL,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		roll       TEXT UNIQUE NOT NULL CHECK (roll <> ''),
		name       TEXT NOT NULL,
		dob        TEXT NOT NULL,
		department TEXT,
		email      TEXT,
		phone      TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS grades (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		subject    TEXT NOT NULL,
		term       TEXT NOT NULL,
		grade      TEXT NOT NULL,
		FOREIGN KEY (student_id) REFERENCES students(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		date       TEXT NOT NULL,
		subject    TEXT NOT NULL,
		status     TEXT NOT NULL CHECK (status IN ('Present', 'Absent')),
		FOREIGN KEY (student_id) REFERENCES students(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_grades_student_id ON grades (student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_student_id ON attendance (student_id)`,
}

// Default teacher seeded into an empty teachers table.
const (
	defaultTeacherName     = "Administrator"
	defaultTeacherUsername = "admin"
	defaultTeacherPassword = "admin"
)

// Initialize creates any missing table and seeds the default teacher when
// the teachers table is empty. Everything runs in one transaction, so a
// failure leaves the file as it was. Repeated calls change nothing.
//
// Failures are reported as storage.ErrStoreUnavailable; the caller is
// expected to treat them as fatal.
func (s *SQLite) Initialize(ctx context.Context) error {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Initialize: begin: %w: %w", storage.ErrStoreUnavailable, err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("Initialize: create schema: %w: %w", storage.ErrStoreUnavailable, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO teachers (name, username, password)
		SELECT ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM teachers)`,
		defaultTeacherName, defaultTeacherUsername, defaultTeacherPassword,
	)
	if err != nil {
		return fmt.Errorf("Initialize: seed teacher: %w: %w", storage.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Initialize: commit: %w: %w", storage.ErrStoreUnavailable, err)
	}
	committed = true

	return nil
}

// nullable maps an empty optional field to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
