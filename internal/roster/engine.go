// Package roster is the roster engine. It owns the cached collection, the
// filter criteria, the edit form and the notification queue, and it is
// driven entirely by messages: Update applies one message and returns the
// follow-up work as a tea.Cmd, View projects the current state for
// rendering.
//
// Remote calls only ever run inside commands. Their results come back as
// ListedMsg, SavedMsg and DeletedMsg, so all state changes happen on the
// goroutine that calls Update.
package roster

import (
	"context"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aanand-mishra/student-roster/internal/client"
	"github.com/aanand-mishra/student-roster/internal/notify"
	"github.com/aanand-mishra/student-roster/internal/state"
	"github.com/aanand-mishra/student-roster/internal/theme"
	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/aanand-mishra/student-roster/internal/workflow"
)

// Store is the remote record store. *client.Client satisfies it.
type Store interface {
	List(ctx context.Context) ([]types.Student, error)
	Create(ctx context.Context, draft types.Draft) error
	Update(ctx context.Context, id int64, draft types.Draft) error
	Delete(ctx context.Context, id int64) error
}

var _ Store = (*client.Client)(nil)

const (
	msgSaved   = "Student saved"
	msgDeleted = "Student deleted"
)

// Engine is not safe for concurrent use.
type Engine struct {
	ctx   context.Context
	store Store
	log   *slog.Logger

	state *state.Store
	flow  workflow.Workflow
	notes *notify.Center
	theme *theme.Manager

	discardStale bool
	issued       uint64 // seq of the newest list command
	applied      uint64 // seq whose result is in the collection
	inflight     int    // list commands not yet completed

	pendingDelete *int64
}

type Option func(*Engine)

// WithContext sets the context passed to every remote call.
func WithContext(ctx context.Context) Option {
	return func(e *Engine) { e.ctx = ctx }
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithNotifications replaces the default notification center.
func WithNotifications(c *notify.Center) Option {
	return func(e *Engine) { e.notes = c }
}

// WithTheme persists theme toggles through m. The engine starts in m's
// current theme.
func WithTheme(m *theme.Manager) Option {
	return func(e *Engine) { e.theme = m }
}

// WithDiscardStaleReloads drops list results that complete after a newer
// list result was already applied. By default the last response to arrive
// wins.
func WithDiscardStaleReloads(discard bool) Option {
	return func(e *Engine) { e.discardStale = discard }
}

func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		ctx:   context.Background(),
		store: store,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		state: state.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.notes == nil {
		e.notes = notify.New()
	}
	if e.theme != nil {
		e.state.SetTheme(e.theme.Current())
	}
	return e
}

// Init issues the initial load.
func (e *Engine) Init() tea.Cmd {
	return e.list()
}

// Update applies msg and returns the work it triggers, or nil.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SearchMsg:
		e.state.SetCriteria(state.CriteriaPatch{SearchText: &msg.Text})
	case MajorFilterMsg:
		e.state.SetCriteria(state.CriteriaPatch{Major: &msg.Major})
	case YearFilterMsg:
		e.state.SetCriteria(state.CriteriaPatch{Year: &msg.Year})
	case SortMsg:
		e.state.SetCriteria(state.CriteriaPatch{SortKey: &msg.Key})

	case OpenCreateMsg:
		e.flow.OpenCreate()
	case OpenEditMsg:
		if !e.flow.OpenEdit(msg.ID, e.state.Find) {
			e.log.Debug("edit target not in collection", slog.Int64("id", msg.ID))
		}
	case CancelEditMsg:
		e.flow.Cancel()
	case SubmitMsg:
		req, ok := e.flow.Submit(msg.Form)
		if !ok {
			return nil
		}
		return e.save(req)

	case RequestDeleteMsg:
		if _, ok := e.state.Find(msg.ID); ok {
			id := msg.ID
			e.pendingDelete = &id
		}
	case CancelDeleteMsg:
		e.pendingDelete = nil
	case ConfirmDeleteMsg:
		if e.pendingDelete == nil {
			return nil
		}
		id := *e.pendingDelete
		e.pendingDelete = nil
		return e.remove(id)

	case ToggleThemeMsg:
		return e.toggleTheme()
	case DismissMsg:
		e.notes.Dismiss(msg.ID)
	case notify.ExpiredMsg:
		e.notes.Expire(msg.ID)
	case ReloadMsg:
		return e.list()

	case ListedMsg:
		return e.listed(msg)
	case SavedMsg:
		return e.saved(msg)
	case DeletedMsg:
		return e.deleted(msg)
	}
	return nil
}

func (e *Engine) listed(msg ListedMsg) tea.Cmd {
	if e.inflight > 0 {
		e.inflight--
	}
	if e.discardStale && msg.Seq < e.applied {
		e.log.Debug("dropping stale list result", slog.Uint64("seq", msg.Seq), slog.Uint64("applied", e.applied))
		return nil
	}
	e.applied = msg.Seq

	if msg.Err != nil {
		e.log.Warn("list failed", slog.String("error", msg.Err.Error()))
		e.state.SetLoadError(msg.Err)
		return e.push(msg.Err.Error(), notify.Error)
	}
	e.state.SetCollection(msg.Students)
	return nil
}

func (e *Engine) saved(msg SavedMsg) tea.Cmd {
	if !e.flow.Complete(msg.Session, msg.Err) {
		e.log.Debug("save result for a closed form", slog.Uint64("session", msg.Session))
	}
	if msg.Err != nil {
		e.log.Warn("save failed", slog.String("error", msg.Err.Error()))
		return e.push(msg.Err.Error(), notify.Error)
	}
	return tea.Batch(e.push(msgSaved, notify.Success), e.list())
}

func (e *Engine) deleted(msg DeletedMsg) tea.Cmd {
	if msg.Err != nil {
		e.log.Warn("delete failed", slog.Int64("id", msg.ID), slog.String("error", msg.Err.Error()))
		return e.push(msg.Err.Error(), notify.Error)
	}
	return tea.Batch(e.push(msgDeleted, notify.Success), e.list())
}

func (e *Engine) toggleTheme() tea.Cmd {
	if e.theme == nil {
		next := state.ThemeDark
		if e.state.Theme() == state.ThemeDark {
			next = state.ThemeLight
		}
		e.state.SetTheme(next)
		return nil
	}
	t, err := e.theme.Toggle()
	e.state.SetTheme(t)
	if err != nil {
		e.log.Warn("theme not saved", slog.String("error", err.Error()))
		return e.push("failed to save theme", notify.Error)
	}
	return nil
}

func (e *Engine) push(message string, severity notify.Severity) tea.Cmd {
	_, cmd := e.notes.Push(message, severity)
	return cmd
}

func (e *Engine) list() tea.Cmd {
	e.issued++
	e.inflight++
	seq := e.issued
	ctx, store := e.ctx, e.store
	return func() tea.Msg {
		students, err := store.List(ctx)
		return ListedMsg{Seq: seq, Students: students, Err: err}
	}
}

func (e *Engine) save(req workflow.Request) tea.Cmd {
	ctx, store := e.ctx, e.store
	return func() tea.Msg {
		var err error
		if req.Mode == workflow.ModeUpdate {
			err = store.Update(ctx, req.ID, req.Draft)
		} else {
			err = store.Create(ctx, req.Draft)
		}
		return SavedMsg{Session: req.Session, Mode: req.Mode, Err: err}
	}
}

func (e *Engine) remove(id int64) tea.Cmd {
	ctx, store := e.ctx, e.store
	return func() tea.Msg {
		return DeletedMsg{ID: id, Err: store.Delete(ctx, id)}
	}
}
