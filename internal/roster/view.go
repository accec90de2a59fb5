package roster

import (
	"strconv"

	"github.com/aanand-mishra/student-roster/internal/filter"
	"github.com/aanand-mishra/student-roster/internal/notify"
	"github.com/aanand-mishra/student-roster/internal/state"
	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/aanand-mishra/student-roster/internal/workflow"
)

// Placeholder stands in for an absent major, gpa or year.
const Placeholder = "—"

// EmptyText is shown when the filtered view has no rows.
const EmptyText = "No students match the current filters."

// Row is one student formatted for display.
type Row struct {
	ID      int64
	Name    string
	Address string
	Email   string
	Phone   string
	Major   string
	GPA     string
	Year    string
}

type StatsView struct {
	Total        string
	AverageGPA   string
	Majors       string
	EarliestYear string
}

// Modal is the open add/edit form.
type Modal struct {
	Title   string
	Mode    workflow.Mode
	ID      int64
	Form    workflow.Form
	Error   string
	Pending bool
}

// ViewModel is everything a renderer needs. It shares nothing mutable with
// the engine.
type ViewModel struct {
	Theme    state.Theme
	Criteria filter.Criteria
	Options  state.FilterOptions
	Stats    StatsView

	// Rows is empty when Error is set.
	Rows  []Row
	Error string
	Empty string

	Loading       bool
	Modal         *Modal
	PendingDelete *Row
	Notifications []notify.Notification
}

// View projects the current state. It never mutates the engine.
func (e *Engine) View() ViewModel {
	vm := ViewModel{
		Theme:         e.state.Theme(),
		Criteria:      e.state.Criteria(),
		Options:       e.state.FilterOptions(),
		Stats:         statsView(e.state.Stats()),
		Loading:       e.inflight > 0,
		Notifications: e.notes.Active(),
	}

	if err := e.state.LoadError(); err != nil {
		vm.Error = err.Error()
	} else {
		view := e.state.DerivedView()
		vm.Rows = make([]Row, len(view))
		for i, s := range view {
			vm.Rows[i] = RowOf(s)
		}
		if len(vm.Rows) == 0 {
			vm.Empty = EmptyText
		}
	}

	if snap := e.flow.Snapshot(); snap.Phase == workflow.Editing {
		m := &Modal{Title: "Add Student", Mode: snap.Mode, ID: snap.ID, Form: snap.Form, Pending: snap.Pending}
		if snap.Mode == workflow.ModeUpdate {
			m.Title = "Edit Student"
		}
		if snap.Err != nil {
			m.Error = snap.Err.Error()
		}
		vm.Modal = m
	}

	if e.pendingDelete != nil {
		row := Row{ID: *e.pendingDelete}
		if s, ok := e.state.Find(*e.pendingDelete); ok {
			row = RowOf(s)
		}
		vm.PendingDelete = &row
	}
	return vm
}

// RowOf formats a student.
func RowOf(s *types.Student) Row {
	r := Row{
		ID:      s.ID,
		Name:    s.FullName(),
		Address: types.Deref(s.Address),
		Email:   s.Email,
		Phone:   types.Deref(s.Phone),
		Major:   Placeholder,
		GPA:     Placeholder,
		Year:    Placeholder,
	}
	if s.Major != nil && *s.Major != "" {
		r.Major = *s.Major
	}
	if s.GPA != nil {
		r.GPA = strconv.FormatFloat(*s.GPA, 'f', 2, 64)
	}
	if s.EnrollmentYear != nil {
		r.Year = strconv.Itoa(*s.EnrollmentYear)
	}
	return r
}

func statsView(st state.Stats) StatsView {
	v := StatsView{
		Total:        strconv.Itoa(st.Total),
		AverageGPA:   st.AverageGPAText(),
		Majors:       strconv.Itoa(st.MajorCount),
		EarliestYear: Placeholder,
	}
	if st.EarliestYear != nil {
		v.EarliestYear = strconv.Itoa(*st.EarliestYear)
	}
	return v
}
