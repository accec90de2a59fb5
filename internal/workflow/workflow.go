// Package workflow is the add/edit form state machine:
//
//	Closed ──OpenCreate──▶ Editing(Create)
//	Closed ──OpenEdit(id)─▶ Editing(Update id)   (no-op if id is unknown)
//	Editing ──Cancel──────▶ Closed
//	Editing ──Submit──────▶ Editing(pending) ──Complete(nil)──▶ Closed
//	                                         ──Complete(err)──▶ Editing
//
// The machine never talks to the network. Submit hands back a Request for
// the caller to dispatch and Complete reports how it went. Every open
// starts a new session; a completion only applies to the session that
// submitted it.
package workflow

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/aanand-mishra/student-roster/internal/utils/response"
)

// Phase is the top-level state.
type Phase int

const (
	Closed Phase = iota
	Editing
)

func (p Phase) String() string {
	if p == Editing {
		return "editing"
	}
	return "closed"
}

// Mode says what a submit will do.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

// Form holds the raw text of every input, as typed.
type Form struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName"  validate:"required"`
	Email          string `json:"email"     validate:"required"`
	Phone          string `json:"phone"`
	DateOfBirth    string `json:"dateOfBirth"`
	Address        string `json:"address"`
	Major          string `json:"major"`
	GPA            string `json:"gpa"`
	EnrollmentYear string `json:"enrollmentYear"`
}

// FormFrom fills a form from a cached student, absent fields as "".
func FormFrom(s *types.Student) Form {
	f := Form{
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Email:       s.Email,
		Phone:       types.Deref(s.Phone),
		DateOfBirth: types.Deref(s.DateOfBirth),
		Address:     types.Deref(s.Address),
		Major:       types.Deref(s.Major),
	}
	if s.GPA != nil {
		f.GPA = strconv.FormatFloat(*s.GPA, 'f', -1, 64)
	}
	if s.EnrollmentYear != nil {
		f.EnrollmentYear = strconv.Itoa(*s.EnrollmentYear)
	}
	return f
}

// LocalValidationError is a client-side check that failed before any
// request was made.
type LocalValidationError struct {
	Message string
}

func (e *LocalValidationError) Error() string { return e.Message }

// Request is a validated submit, ready to be sent to the record store.
type Request struct {
	Session uint64
	Mode    Mode
	ID      int64 // set for ModeUpdate
	Draft   types.Draft
}

// Snapshot is a read-only copy of the machine's state.
type Snapshot struct {
	Phase   Phase
	Mode    Mode
	ID      int64
	Form    Form
	Err     error
	Pending bool
}

// Workflow is the state machine. The zero value is Closed.
type Workflow struct {
	session uint64
	phase   Phase
	mode    Mode
	id      int64
	form    Form
	err     error
	pending bool
}

var validate = response.NewValidator()

// OpenCreate starts a new, empty form.
func (w *Workflow) OpenCreate() {
	*w = Workflow{session: w.session + 1, phase: Editing, mode: ModeCreate}
}

// OpenEdit starts editing the student with the given id. When lookup does
// not find it (likely removed meanwhile) nothing changes and false is
// returned.
func (w *Workflow) OpenEdit(id int64, lookup func(int64) (*types.Student, bool)) bool {
	s, ok := lookup(id)
	if !ok {
		return false
	}
	*w = Workflow{session: w.session + 1, phase: Editing, mode: ModeUpdate, id: id, form: FormFrom(s)}
	return true
}

// Cancel closes the form from any state.
func (w *Workflow) Cancel() {
	*w = Workflow{session: w.session}
}

// Submit validates form. On success it returns the request to dispatch
// and marks the form pending. On failure, or when there is nothing to
// submit (closed, or already pending), it returns false; validation
// failures are kept in the form-error slot.
func (w *Workflow) Submit(form Form) (Request, bool) {
	if w.phase != Editing || w.pending {
		return Request{}, false
	}
	w.form = form

	draft, err := coerce(form)
	if err != nil {
		w.err = err
		return Request{}, false
	}

	w.err = nil
	w.pending = true
	return Request{Session: w.session, Mode: w.mode, ID: w.id, Draft: draft}, true
}

// Complete reports the outcome of the request submitted in session.
// Success closes the form; failure keeps it open with err in the
// form-error slot. It reports false and changes nothing when session is
// no longer the pending one.
func (w *Workflow) Complete(session uint64, err error) bool {
	if w.phase != Editing || !w.pending || session != w.session {
		return false
	}
	if err == nil {
		*w = Workflow{session: w.session}
		return true
	}
	w.pending = false
	w.err = err
	return true
}

// Snapshot returns the current state.
func (w *Workflow) Snapshot() Snapshot {
	return Snapshot{Phase: w.phase, Mode: w.mode, ID: w.id, Form: w.form, Err: w.err, Pending: w.pending}
}

// coerce trims the form, checks the required fields, and converts the
// optional inputs: empty becomes absent, gpa and enrollmentYear are parsed.
func coerce(f Form) (types.Draft, error) {
	trimmed := Form{
		FirstName:      strings.TrimSpace(f.FirstName),
		LastName:       strings.TrimSpace(f.LastName),
		Email:          strings.TrimSpace(f.Email),
		Phone:          strings.TrimSpace(f.Phone),
		DateOfBirth:    strings.TrimSpace(f.DateOfBirth),
		Address:        strings.TrimSpace(f.Address),
		Major:          strings.TrimSpace(f.Major),
		GPA:            strings.TrimSpace(f.GPA),
		EnrollmentYear: strings.TrimSpace(f.EnrollmentYear),
	}

	var msgs []string
	if err := validate.Struct(trimmed); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return types.Draft{}, &LocalValidationError{Message: err.Error()}
		}
		msgs = response.FieldMessages(verrs)
	}

	draft := types.Draft{
		FirstName:   trimmed.FirstName,
		LastName:    trimmed.LastName,
		Email:       trimmed.Email,
		Phone:       types.OptionalString(trimmed.Phone),
		DateOfBirth: types.OptionalString(trimmed.DateOfBirth),
		Address:     types.OptionalString(trimmed.Address),
		Major:       types.OptionalString(trimmed.Major),
	}
	if trimmed.GPA != "" {
		gpa, err := strconv.ParseFloat(trimmed.GPA, 64)
		if err != nil {
			msgs = append(msgs, "field gpa must be a number")
		} else {
			draft.GPA = &gpa
		}
	}
	if trimmed.EnrollmentYear != "" {
		year, err := strconv.Atoi(trimmed.EnrollmentYear)
		if err != nil {
			msgs = append(msgs, "field enrollmentYear must be a whole number")
		} else {
			draft.EnrollmentYear = &year
		}
	}

	if len(msgs) > 0 {
		return types.Draft{}, &LocalValidationError{Message: strings.Join(msgs, ", ")}
	}
	return draft, nil
}
