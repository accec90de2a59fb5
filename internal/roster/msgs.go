package roster

import (
	"github.com/aanand-mishra/student-roster/internal/filter"
	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/aanand-mishra/student-roster/internal/workflow"
)

// User intents.
type (
	SearchMsg      struct{ Text string }
	MajorFilterMsg struct{ Major string }
	YearFilterMsg  struct{ Year string }
	SortMsg        struct{ Key filter.SortKey }

	OpenCreateMsg struct{}
	OpenEditMsg   struct{ ID int64 }
	CancelEditMsg struct{}
	SubmitMsg     struct{ Form workflow.Form }

	// RequestDeleteMsg asks for confirmation; nothing is sent until
	// ConfirmDeleteMsg arrives.
	RequestDeleteMsg struct{ ID int64 }
	ConfirmDeleteMsg struct{}
	CancelDeleteMsg  struct{}

	ToggleThemeMsg struct{}
	DismissMsg     struct{ ID string }
	ReloadMsg      struct{}
)

// ListedMsg completes a list command. Seq identifies the command that
// produced it.
type ListedMsg struct {
	Seq      uint64
	Students []types.Student
	Err      error
}

// SavedMsg completes a create or update. Session is the form session that
// submitted it.
type SavedMsg struct {
	Session uint64
	Mode    workflow.Mode
	Err     error
}

// DeletedMsg completes a delete.
type DeletedMsg struct {
	ID  int64
	Err error
}
