package storage

import (
	"database/sql"

	"github.com/aanand-mishra/student-roster/internal/types"
)

// Columns is the SELECT list every SQL backend uses, in ScanStudent order.
const Columns = "id, first_name, last_name, email, phone, date_of_birth, address, major, gpa, enrollment_year"

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanStudent reads one row selected with Columns. NULL columns become nil
// pointers.
func ScanStudent(row Scanner) (types.Student, error) {
	var (
		s                          types.Student
		phone, dob, address, major sql.NullString
		gpa                        sql.NullFloat64
		year                       sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email,
		&phone, &dob, &address, &major, &gpa, &year); err != nil {
		return types.Student{}, err
	}
	s.Phone = nullString(phone)
	s.DateOfBirth = nullString(dob)
	s.Address = nullString(address)
	s.Major = nullString(major)
	if gpa.Valid {
		s.GPA = types.Ptr(gpa.Float64)
	}
	if year.Valid {
		s.EnrollmentYear = types.Ptr(int(year.Int64))
	}
	return s, nil
}

// Args returns the draft's attributes in column order (without id), with
// nil pointers passed as SQL NULL.
func Args(d types.Draft) []any {
	return []any{
		d.FirstName, d.LastName, d.Email,
		nullable(d.Phone), nullable(d.DateOfBirth), nullable(d.Address), nullable(d.Major),
		nullable(d.GPA), nullable(d.EnrollmentYear),
	}
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return types.Ptr(ns.String)
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
