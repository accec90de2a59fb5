// Package postgres provides a Postgres-backed storage.Storage using the pgx
// driver through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/aanand-mishra/student-roster/internal/storage"
	"github.com/aanand-mishra/student-roster/internal/types"
)

var _ storage.Storage = (*Store)(nil)

const driverName = "pgx"

const ddl = `CREATE TABLE IF NOT EXISTS students (
	id              BIGSERIAL PRIMARY KEY,
	first_name      TEXT NOT NULL,
	last_name       TEXT NOT NULL,
	email           TEXT NOT NULL UNIQUE,
	phone           TEXT,
	date_of_birth   TEXT,
	address         TEXT,
	major           TEXT,
	gpa             DOUBLE PRECISION,
	enrollment_year INTEGER
)`

// Store persists students in a Postgres table.
type Store struct {
	db *sql.DB
}

// New opens dsn, verifies connectivity and ensures the students table.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres: dsn is empty")
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure students table: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) CreateStudent(ctx context.Context, draft types.Draft) (types.Student, error) {
	if err := s.ensureEmailFree(ctx, draft.Email, 0); err != nil {
		return types.Student{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO students (first_name, last_name, email, phone, date_of_birth, address, major, gpa, enrollment_year)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+storage.Columns,
		storage.Args(draft)...,
	)
	student, err := storage.ScanStudent(row)
	if err != nil {
		return types.Student{}, fmt.Errorf("insert student: %w", err)
	}
	return student, nil
}

func (s *Store) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+storage.Columns+` FROM students WHERE id = $1`, id)
	student, err := storage.ScanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("%w with id: %d", storage.ErrNotFound, id)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("select student: %w", err)
	}
	return student, nil
}

func (s *Store) GetStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+storage.Columns+` FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select students: %w", err)
	}
	defer func() { _ = rows.Close() }()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := storage.ScanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

func (s *Store) UpdateStudentByID(ctx context.Context, id int64, draft types.Draft) (types.Student, error) {
	if err := s.ensureEmailFree(ctx, draft.Email, id); err != nil {
		return types.Student{}, err
	}
	args := append(storage.Args(draft), id)
	row := s.db.QueryRowContext(ctx,
		`UPDATE students SET first_name = $1, last_name = $2, email = $3, phone = $4, date_of_birth = $5,
		 address = $6, major = $7, gpa = $8, enrollment_year = $9
		 WHERE id = $10
		 RETURNING `+storage.Columns,
		args...,
	)
	student, err := storage.ScanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("%w with id: %d", storage.ErrNotFound, id)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("update student: %w", err)
	}
	return student, nil
}

func (s *Store) DeleteStudentByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w with id: %d", storage.ErrNotFound, id)
	}
	return nil
}

func (s *Store) ensureEmailFree(ctx context.Context, email string, self int64) error {
	var other int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM students WHERE email = $1`, email).Scan(&other)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("lookup email: %w", err)
	case other != self:
		return fmt.Errorf("%w: %s", storage.ErrDuplicateEmail, email)
	}
	return nil
}
