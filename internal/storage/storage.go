// Package storage defines the Storage interface: a contract that any
// database backend of the students-api record store must satisfy.
//
// Handlers (HTTP layer) do not know which database they are talking to.
// The sqlite and postgres packages both implement this interface, and
// main.go picks one from config.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-roster/internal/types"
)

var (
	// ErrNotFound is returned when no student has the requested id.
	ErrNotFound = errors.New("student not found")

	// ErrDuplicateEmail is returned when another student already uses
	// the email address of a create or update.
	ErrDuplicateEmail = errors.New("email already exists")
)

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a new student record and returns it with the
	// generated primary-key ID.
	CreateStudent(ctx context.Context, draft types.Draft) (types.Student, error)

	// GetStudentByID fetches a single student by primary key.
	// Returns an error wrapping ErrNotFound if there is none.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// GetStudents returns every student ordered by id.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID replaces every attribute of an existing student.
	UpdateStudentByID(ctx context.Context, id int64, draft types.Draft) (types.Student, error)

	// DeleteStudentByID removes a student record permanently.
	DeleteStudentByID(ctx context.Context, id int64) error

	// Close releases the underlying connection pool.
	Close() error
}
