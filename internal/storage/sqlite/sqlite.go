// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// Two drivers are registered by the blank imports below:
//
//   - "sqlite3": github.com/mattn/go-sqlite3, the cgo binding.
//   - "sqlite" : modernc.org/sqlite, a pure-Go translation that needs no
//     C toolchain (used by the tests).
//
// Both speak the same SQL dialect, so the queries are shared.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aanand-mishra/student-roster/internal/config"
	"github.com/aanand-mishra/student-roster/internal/storage"
	"github.com/aanand-mishra/student-roster/internal/types"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Compile-time check that SQLite satisfies the storage contract.
var _ storage.Storage = (*SQLite)(nil)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.StoragePath with cfg.StorageDriver,
// creates the students table if it does not already exist, and returns a
// ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	return Open(cfg.StorageDriver, cfg.StoragePath)
}

// Open is New without the config indirection.
func Open(driver, path string) (*SQLite, error) {
	if driver != config.DriverSQLite3 && driver != config.DriverSQLite {
		return nil, fmt.Errorf("sqlite.Open: unsupported driver %q", driver)
	}
	if path == "" {
		return nil, errors.New("sqlite.Open: db path is empty")
	}
	if !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("sqlite.Open: create dir: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn(driver, path))
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}
	// SQLite serialises writers anyway; one connection avoids
	// "database is locked" churn.
	db.SetMaxOpenConns(1)

	// CREATE TABLE IF NOT EXISTS is idempotent: safe to run on every
	// startup.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name      TEXT    NOT NULL,
			last_name       TEXT    NOT NULL,
			email           TEXT    NOT NULL UNIQUE,
			phone           TEXT,
			date_of_birth   TEXT,
			address         TEXT,
			major           TEXT,
			gpa             REAL,
			enrollment_year INTEGER
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// dsn builds a data source name. modernc.org/sqlite prefers a file: URL
// with pragmas in the query string; mattn accepts a plain path.
func dsn(driver, path string) string {
	if driver != config.DriverSQLite || strings.HasPrefix(path, "file:") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: path}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent inserts a new row and returns it as stored.
//
// The email uniqueness check runs first so the caller gets
// storage.ErrDuplicateEmail rather than a driver-specific constraint error.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateStudent(ctx context.Context, draft types.Draft) (types.Student, error) {
	if err := s.ensureEmailFree(ctx, draft.Email, 0); err != nil {
		return types.Student{}, err
	}

	result, err := s.Db.ExecContext(ctx,
		`INSERT INTO students (first_name, last_name, email, phone, date_of_birth, address, major, gpa, enrollment_year)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		storage.Args(draft)...,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	return draft.WithID(lastID), nil
}

// GetStudentByID fetches exactly one student row matched by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	row := s.Db.QueryRowContext(ctx,
		"SELECT "+storage.Columns+" FROM students WHERE id = ? LIMIT 1", id)

	student, err := storage.ScanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("%w with id: %d", storage.ErrNotFound, id)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// GetStudents returns all student rows ordered by id.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := s.Db.QueryContext(ctx, "SELECT "+storage.Columns+" FROM students ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Returning [] instead of null in JSON is better API behaviour.
	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := storage.ScanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudentByID replaces every attribute of an existing student and
// returns the stored record.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id int64, draft types.Draft) (types.Student, error) {
	if _, err := s.GetStudentByID(ctx, id); err != nil {
		return types.Student{}, err
	}
	if err := s.ensureEmailFree(ctx, draft.Email, id); err != nil {
		return types.Student{}, err
	}

	args := append(storage.Args(draft), id)
	_, err := s.Db.ExecContext(ctx,
		`UPDATE students SET first_name = ?, last_name = ?, email = ?, phone = ?, date_of_birth = ?,
		 address = ?, major = ?, gpa = ?, enrollment_year = ? WHERE id = ?`,
		args...,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	return s.GetStudentByID(ctx, id)
}

// DeleteStudentByID removes a student row by primary key.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id int64) error {
	result, err := s.Db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w with id: %d", storage.ErrNotFound, id)
	}
	return nil
}

// ensureEmailFree fails with storage.ErrDuplicateEmail when a student other
// than self already uses email.
func (s *SQLite) ensureEmailFree(ctx context.Context, email string, self int64) error {
	var other int64
	err := s.Db.QueryRowContext(ctx, "SELECT id FROM students WHERE email = ? LIMIT 1", email).Scan(&other)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("ensureEmailFree: scan: %w", err)
	case other != self:
		return fmt.Errorf("%w: %s", storage.ErrDuplicateEmail, email)
	}
	return nil
}
