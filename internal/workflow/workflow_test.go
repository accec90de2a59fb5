package workflow

import (
	"errors"
	"testing"

	"github.com/aanand-mishra/student-roster/internal/types"
)

func lookupOf(students ...*types.Student) func(int64) (*types.Student, bool) {
	return func(id int64) (*types.Student, bool) {
		for _, s := range students {
			if s.ID == id {
				return s, true
			}
		}
		return nil, false
	}
}

func validForm() Form {
	return Form{FirstName: " Ana ", LastName: "Lee", Email: "ana@example.com"}
}

func TestOpenEditUnknownIDStaysClosed(t *testing.T) {
	var w Workflow
	if w.OpenEdit(999, lookupOf()) {
		t.Fatalf("OpenEdit should report no transition")
	}
	if snap := w.Snapshot(); snap.Phase != Closed || snap.Err != nil {
		t.Fatalf("expected Closed without error, got %+v", snap)
	}
}

func TestOpenEditPrefillsForm(t *testing.T) {
	s := &types.Student{ID: 7, FirstName: "Bo", LastName: "Park", Email: "bo@example.com", GPA: types.Ptr(3.9), EnrollmentYear: types.Ptr(2022)}
	var w Workflow
	if !w.OpenEdit(7, lookupOf(s)) {
		t.Fatalf("OpenEdit should transition")
	}
	snap := w.Snapshot()
	if snap.Phase != Editing || snap.Mode != ModeUpdate || snap.ID != 7 {
		t.Fatalf("unexpected state %+v", snap)
	}
	if snap.Form.GPA != "3.9" || snap.Form.EnrollmentYear != "2022" || snap.Form.Phone != "" {
		t.Fatalf("unexpected form %+v", snap.Form)
	}
}

func TestSubmitEmptyFirstNameIsLocalValidationError(t *testing.T) {
	var w Workflow
	w.OpenCreate()
	form := validForm()
	form.FirstName = "   "

	if _, ok := w.Submit(form); ok {
		t.Fatalf("Submit should fail validation")
	}
	snap := w.Snapshot()
	if snap.Phase != Editing || snap.Pending {
		t.Fatalf("expected Editing, not pending, got %+v", snap)
	}
	var lerr *LocalValidationError
	if !errors.As(snap.Err, &lerr) {
		t.Fatalf("expected LocalValidationError, got %v", snap.Err)
	}
	if lerr.Message != "field firstName is required" {
		t.Fatalf("unexpected message %q", lerr.Message)
	}
	if snap.Form.FirstName != "   " {
		t.Fatalf("submitted values should be kept for correction")
	}
}

func TestSubmitCoercesOptionalFields(t *testing.T) {
	var w Workflow
	w.OpenCreate()
	form := validForm()
	form.GPA = "0"
	form.EnrollmentYear = " 2021 "
	form.Major = "  "

	req, ok := w.Submit(form)
	if !ok {
		t.Fatalf("Submit failed: %v", w.Snapshot().Err)
	}
	d := req.Draft
	if req.Mode != ModeCreate || d.FirstName != "Ana" {
		t.Fatalf("unexpected request %+v", req)
	}
	if d.GPA == nil || *d.GPA != 0 {
		t.Fatalf("gpa 0 must be present, got %v", d.GPA)
	}
	if d.EnrollmentYear == nil || *d.EnrollmentYear != 2021 {
		t.Fatalf("unexpected year %v", d.EnrollmentYear)
	}
	if d.Major != nil || d.Phone != nil || d.Address != nil || d.DateOfBirth != nil {
		t.Fatalf("empty inputs must be absent, got %+v", d)
	}
	if !w.Snapshot().Pending {
		t.Fatalf("expected pending after a valid submit")
	}
}

func TestSubmitRejectsNonNumericInputs(t *testing.T) {
	var w Workflow
	w.OpenCreate()
	form := validForm()
	form.GPA = "high"
	form.EnrollmentYear = "20x1"
	if _, ok := w.Submit(form); ok {
		t.Fatalf("expected failure")
	}
	want := "field gpa must be a number, field enrollmentYear must be a whole number"
	if got := w.Snapshot().Err.Error(); got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestSubmitWhileClosedOrPending(t *testing.T) {
	var w Workflow
	if _, ok := w.Submit(validForm()); ok {
		t.Fatalf("closed workflow must not submit")
	}
	w.OpenCreate()
	if _, ok := w.Submit(validForm()); !ok {
		t.Fatalf("first submit should succeed")
	}
	if _, ok := w.Submit(validForm()); ok {
		t.Fatalf("second submit while pending must be ignored")
	}
}

func TestCompleteTransitions(t *testing.T) {
	s := &types.Student{ID: 3, FirstName: "Cy", LastName: "Moe", Email: "cy@example.com"}
	var w Workflow
	w.OpenEdit(3, lookupOf(s))
	req, ok := w.Submit(FormFrom(s))
	if !ok || req.Mode != ModeUpdate || req.ID != 3 {
		t.Fatalf("unexpected request %+v", req)
	}

	w.Complete(req.Session, errors.New("email already exists: cy@example.com"))
	snap := w.Snapshot()
	if snap.Phase != Editing || snap.Pending || snap.Err == nil {
		t.Fatalf("failure should keep the form open with an error, got %+v", snap)
	}

	if req, ok = w.Submit(FormFrom(s)); !ok {
		t.Fatalf("resubmit after failure should be allowed")
	}
	w.Complete(req.Session, nil)
	if w.Snapshot().Phase != Closed {
		t.Fatalf("success should close")
	}
}

func TestCancel(t *testing.T) {
	var w Workflow
	w.OpenCreate()
	req, _ := w.Submit(validForm())
	w.Cancel()
	if w.Snapshot().Phase != Closed {
		t.Fatalf("Cancel should close")
	}
	// Completion arriving after cancel is ignored.
	if w.Complete(req.Session, errors.New("late")) {
		t.Fatalf("completion after cancel reported as applied")
	}
	if snap := w.Snapshot(); snap.Phase != Closed || snap.Err != nil {
		t.Fatalf("late completion changed state: %+v", snap)
	}
}

func TestCompleteIgnoresEarlierSession(t *testing.T) {
	s := &types.Student{ID: 3, FirstName: "Cy", LastName: "Moe", Email: "cy@example.com"}
	var w Workflow
	w.OpenCreate()
	old, ok := w.Submit(validForm())
	if !ok {
		t.Fatalf("submit failed")
	}
	w.Cancel()
	w.OpenEdit(3, lookupOf(s))

	for _, err := range []error{nil, errors.New("email already exists: x@example.com")} {
		if w.Complete(old.Session, err) {
			t.Fatalf("completion of an earlier session applied (err=%v)", err)
		}
		snap := w.Snapshot()
		if snap.Phase != Editing || snap.Mode != ModeUpdate || snap.ID != 3 || snap.Err != nil {
			t.Fatalf("edit form disturbed by earlier session: %+v", snap)
		}
	}

	req, ok := w.Submit(FormFrom(s))
	if !ok || req.Session == old.Session {
		t.Fatalf("expected a fresh session, got %+v", req)
	}
	if !w.Complete(req.Session, nil) || w.Snapshot().Phase != Closed {
		t.Fatalf("own completion should close the form")
	}
}
