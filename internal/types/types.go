// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// the HTTP handlers, storage backends, the record store client and the
// roster engine all import types without depending on each other.
package types

import "strings"

// Student represents a student record as owned by the record store.
//
// Optional attributes are pointers. A nil pointer means "absent" and is
// encoded as JSON null; a pointer to 0 or "" is a real value. This keeps
// a GPA of 0.0 or an enrollment year of 0 from being mistaken for missing
// data.
//
// Struct tags serve two purposes:
//
//  1. json:"..." : the camelCase names of the REST contract.
//
//  2. validate:"...": rules checked by go-playground/validator on the
//     server side. "omitempty" on a pointer skips the rule when nil.
type Student struct {
	ID             int64    `json:"id"`
	FirstName      string   `json:"firstName"      validate:"required"`
	LastName       string   `json:"lastName"       validate:"required"`
	Email          string   `json:"email"          validate:"required,email"`
	Phone          *string  `json:"phone"`
	DateOfBirth    *string  `json:"dateOfBirth"    validate:"omitempty,datetime=2006-01-02"`
	Address        *string  `json:"address"`
	Major          *string  `json:"major"`
	GPA            *float64 `json:"gpa"            validate:"omitempty,gte=0,lte=4"`
	EnrollmentYear *int     `json:"enrollmentYear" validate:"omitempty,gte=1900,lte=2100"`
}

// Draft is the payload of a create or update call. It carries every
// Student attribute except the identity, which the store assigns.
type Draft struct {
	FirstName      string   `json:"firstName"      validate:"required"`
	LastName       string   `json:"lastName"       validate:"required"`
	Email          string   `json:"email"          validate:"required,email"`
	Phone          *string  `json:"phone"`
	DateOfBirth    *string  `json:"dateOfBirth"    validate:"omitempty,datetime=2006-01-02"`
	Address        *string  `json:"address"`
	Major          *string  `json:"major"`
	GPA            *float64 `json:"gpa"            validate:"omitempty,gte=0,lte=4"`
	EnrollmentYear *int     `json:"enrollmentYear" validate:"omitempty,gte=1900,lte=2100"`
}

// WithID turns a draft into a full Student with the given identity.
func (d Draft) WithID(id int64) Student {
	return Student{
		ID:             id,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Email:          d.Email,
		Phone:          d.Phone,
		DateOfBirth:    d.DateOfBirth,
		Address:        d.Address,
		Major:          d.Major,
		GPA:            d.GPA,
		EnrollmentYear: d.EnrollmentYear,
	}
}

// FullName is "{firstName} {lastName}".
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Ptr returns a pointer to v. Handy for building optional fields in
// literals: types.Student{GPA: types.Ptr(3.5)}.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the pointed-to value, or the zero value when p is nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// OptionalString trims s and returns nil when nothing is left.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
