package roster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aanand-mishra/student-roster/internal/client"
	"github.com/aanand-mishra/student-roster/internal/filter"
	"github.com/aanand-mishra/student-roster/internal/notify"
	"github.com/aanand-mishra/student-roster/internal/prefs"
	"github.com/aanand-mishra/student-roster/internal/state"
	"github.com/aanand-mishra/student-roster/internal/theme"
	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/aanand-mishra/student-roster/internal/workflow"
)

type fakeStore struct {
	mu       sync.Mutex
	students []types.Student
	nextID   int64

	lists, creates, updates, deletes int
	listErr, saveErr, deleteErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: 3,
		students: []types.Student{
			{ID: 1, FirstName: "Ana", LastName: "Lee", Email: "ana@example.com", GPA: types.Ptr(3.5), EnrollmentYear: types.Ptr(2021), Major: types.Ptr("CS")},
			{ID: 2, FirstName: "Bo", LastName: "Park", Email: "bo@example.com", GPA: types.Ptr(3.9), EnrollmentYear: types.Ptr(2022), Major: types.Ptr("Math")},
		},
	}
}

func (f *fakeStore) List(context.Context) ([]types.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]types.Student, len(f.students))
	copy(out, f.students)
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, d types.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.students = append(f.students, d.WithID(f.nextID))
	f.nextID++
	return nil
}

func (f *fakeStore) Update(_ context.Context, id int64, d types.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.saveErr != nil {
		return f.saveErr
	}
	for i := range f.students {
		if f.students[i].ID == id {
			f.students[i] = d.WithID(id)
		}
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.students {
		if f.students[i].ID == id {
			f.students = append(f.students[:i], f.students[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStore) calls() (lists, creates, updates, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists, f.creates, f.updates, f.deletes
}

// newEngine uses a frozen clock so notifications stay visible, and a short
// TTL so expiry commands return quickly when run.
func newEngine(store Store, opts ...Option) *Engine {
	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	center := notify.New(notify.WithTTL(time.Millisecond), notify.WithClock(func() time.Time { return frozen }))
	return New(store, append([]Option{WithNotifications(center)}, opts...)...)
}

// run executes cmd and everything it leads to, feeding each message back
// into e. Expiry messages are dropped.
func run(e *Engine, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case notify.ExpiredMsg:
		default:
			queue = append(queue, e.Update(msg))
		}
	}
}

func loaded(t *testing.T, store *fakeStore, opts ...Option) *Engine {
	t.Helper()
	e := newEngine(store, opts...)
	run(e, e.Init())
	if rows := e.View().Rows; len(rows) != 2 {
		t.Fatalf("expected 2 rows after init, got %d", len(rows))
	}
	return e
}

func hasNotification(vm ViewModel, msg string, sev notify.Severity) bool {
	for _, n := range vm.Notifications {
		if n.Message == msg && n.Severity == sev {
			return true
		}
	}
	return false
}

func TestInitLoadsCollection(t *testing.T) {
	store := newFakeStore()
	e := newEngine(store)
	cmd := e.Init()
	if !e.View().Loading {
		t.Fatalf("expected loading before the list completes")
	}
	run(e, cmd)

	vm := e.View()
	if vm.Loading || vm.Error != "" || vm.Empty != "" {
		t.Fatalf("unexpected view %+v", vm)
	}
	if vm.Rows[0].Name != "Ana Lee" || vm.Rows[1].Name != "Bo Park" {
		t.Fatalf("expected name order, got %+v", vm.Rows)
	}
	if vm.Stats.Total != "2" || vm.Stats.AverageGPA != "3.70" || vm.Stats.EarliestYear != "2021" {
		t.Fatalf("unexpected stats %+v", vm.Stats)
	}
}

func TestCriteriaIntents(t *testing.T) {
	e := loaded(t, newFakeStore())

	e.Update(SortMsg{Key: filter.SortGPA})
	if rows := e.View().Rows; rows[0].Name != "Bo Park" {
		t.Fatalf("gpa sort should put Bo first, got %+v", rows)
	}

	e.Update(SearchMsg{Text: "an"})
	if rows := e.View().Rows; len(rows) != 1 || rows[0].Name != "Ana Lee" {
		t.Fatalf("search should leave only Ana, got %+v", rows)
	}

	e.Update(MajorFilterMsg{Major: "Math"})
	vm := e.View()
	if len(vm.Rows) != 0 || vm.Empty != EmptyText {
		t.Fatalf("expected empty state, got %+v", vm)
	}
	// Stats always describe the whole collection.
	if vm.Stats.Total != "2" {
		t.Fatalf("stats changed with filters: %+v", vm.Stats)
	}

	e.Update(SearchMsg{Text: ""})
	e.Update(YearFilterMsg{Year: "2022"})
	if rows := e.View().Rows; len(rows) != 1 || rows[0].Name != "Bo Park" {
		t.Fatalf("expected Bo, got %+v", rows)
	}
}

func TestSuccessfulCreate(t *testing.T) {
	store := newFakeStore()
	e := loaded(t, store)

	e.Update(OpenCreateMsg{})
	if m := e.View().Modal; m == nil || m.Title != "Add Student" {
		t.Fatalf("expected add modal, got %+v", m)
	}

	cmd := e.Update(SubmitMsg{Form: workflow.Form{FirstName: "Cy", LastName: "Moe", Email: "cy@example.com", GPA: "3.1"}})
	if cmd == nil {
		t.Fatalf("submit should produce a save command")
	}
	if m := e.View().Modal; m == nil || !m.Pending {
		t.Fatalf("expected pending modal")
	}
	run(e, cmd)

	lists, creates, _, _ := store.calls()
	if creates != 1 || lists != 2 {
		t.Fatalf("expected 1 create and exactly 1 reload, got creates=%d lists=%d", creates, lists)
	}
	vm := e.View()
	if vm.Modal != nil {
		t.Fatalf("modal should close after save")
	}
	if len(vm.Rows) != 3 {
		t.Fatalf("expected the new student after reload, got %d rows", len(vm.Rows))
	}
	if !hasNotification(vm, "Student saved", notify.Success) {
		t.Fatalf("missing success notification: %+v", vm.Notifications)
	}
}

func TestUpdateExistingStudent(t *testing.T) {
	store := newFakeStore()
	e := loaded(t, store)

	e.Update(OpenEditMsg{ID: 2})
	m := e.View().Modal
	if m == nil || m.Title != "Edit Student" || m.Form.FirstName != "Bo" || m.Form.GPA != "3.9" {
		t.Fatalf("unexpected modal %+v", m)
	}
	form := m.Form
	form.Major = "Physics"
	run(e, e.Update(SubmitMsg{Form: form}))

	if _, _, updates, _ := store.calls(); updates != 1 {
		t.Fatalf("expected one update, got %d", updates)
	}
	e.Update(MajorFilterMsg{Major: "Physics"})
	if rows := e.View().Rows; len(rows) != 1 || rows[0].ID != 2 {
		t.Fatalf("expected updated Bo, got %+v", rows)
	}
}

func TestLateSaveLeavesReopenedFormAlone(t *testing.T) {
	store := newFakeStore()
	e := loaded(t, store)

	e.Update(OpenCreateMsg{})
	saveCmd := e.Update(SubmitMsg{Form: workflow.Form{FirstName: "Cy", LastName: "Moe", Email: "cy@example.com"}})
	if saveCmd == nil {
		t.Fatalf("submit should produce a save command")
	}
	e.Update(CancelEditMsg{})
	e.Update(OpenEditMsg{ID: 1})

	run(e, saveCmd)

	vm := e.View()
	if vm.Modal == nil || vm.Modal.Title != "Edit Student" || vm.Modal.ID != 1 || vm.Modal.Error != "" || vm.Modal.Pending {
		t.Fatalf("late create completion disturbed the edit form: %+v", vm.Modal)
	}
	if lists, creates, _, _ := store.calls(); creates != 1 || lists != 2 {
		t.Fatalf("expected 1 create and exactly 1 reload, got creates=%d lists=%d", creates, lists)
	}
	if len(vm.Rows) != 3 || !hasNotification(vm, "Student saved", notify.Success) {
		t.Fatalf("expected reload and notification, got %d rows, %+v", len(vm.Rows), vm.Notifications)
	}
}

func TestLateFailedSaveLeavesReopenedFormAlone(t *testing.T) {
	store := newFakeStore()
	e := loaded(t, store)
	store.saveErr = &client.ValidationError{Status: 400, Message: "email already exists: ana@example.com"}

	e.Update(OpenCreateMsg{})
	saveCmd := e.Update(SubmitMsg{Form: workflow.Form{FirstName: "Al", LastName: "Lee", Email: "ana@example.com"}})
	e.Update(CancelEditMsg{})
	e.Update(OpenEditMsg{ID: 2})

	run(e, saveCmd)

	vm := e.View()
	if vm.Modal == nil || vm.Modal.ID != 2 || vm.Modal.Error != "" {
		t.Fatalf("earlier failure leaked into the edit form: %+v", vm.Modal)
	}
	if !hasNotification(vm, "email already exists: ana@example.com", notify.Error) {
		t.Fatalf("missing error notification")
	}
}

func TestOpenEditUnknownStudent(t *testing.T) {
	e := loaded(t, newFakeStore())
	if cmd := e.Update(OpenEditMsg{ID: 999}); cmd != nil {
		t.Fatalf("expected no command")
	}
	vm := e.View()
	if vm.Modal != nil || vm.Error != "" {
		t.Fatalf("expected closed form and no error, got %+v", vm)
	}
}

func TestSubmitLocalValidationNeverCallsStore(t *testing.T) {
	store := newFakeStore()
	e := loaded(t, store)
	e.Update(OpenCreateMsg{})

	if cmd := e.Update(SubmitMsg{Form: workflow.Form{LastName: "Moe", Email: "cy@example.com"}}); cmd != nil {
		t.Fatalf("invalid form must not produce a command")
	}
	if _, creates, _, _ := store.calls(); creates != 0 {
		t.Fatalf("store was called")
	}
	m := e.View().Modal
	if m == nil || m.Error != "field firstName is required" || m.Pending {
		t.Fatalf("unexpected modal %+v", m)
	}
}

func TestFailedSaveKeepsCollection(t *testing.T) {
	store := newFakeStore()
	e := loaded(t, store)
	store.saveErr = &client.ValidationError{Status: 400, Message: "email already exists: ana@example.com"}

	e.Update(OpenCreateMsg{})
	run(e, e.Update(SubmitMsg{Form: workflow.Form{FirstName: "Al", LastName: "Lee", Email: "ana@example.com"}}))

	if lists, _, _, _ := store.calls(); lists != 1 {
		t.Fatalf("failed save must not reload, lists=%d", lists)
	}
	vm := e.View()
	if vm.Modal == nil || vm.Modal.Error != "email already exists: ana@example.com" || vm.Modal.Pending {
		t.Fatalf("expected open modal with server message, got %+v", vm.Modal)
	}
	if len(vm.Rows) != 2 || vm.Error != "" {
		t.Fatalf("collection must be untouched, got %+v", vm)
	}
	if !hasNotification(vm, "email already exists: ana@example.com", notify.Error) {
		t.Fatalf("missing error notification")
	}
}

func TestListFailureShowsInlineError(t *testing.T) {
	store := newFakeStore()
	store.listErr = &client.TransportError{Op: "load students", Status: 503}
	e := newEngine(store)
	run(e, e.Init())

	vm := e.View()
	if vm.Error != "failed to load students" || len(vm.Rows) != 0 || vm.Empty != "" {
		t.Fatalf("expected inline error, got %+v", vm)
	}
	if !hasNotification(vm, "failed to load students", notify.Error) {
		t.Fatalf("missing error notification")
	}

	store.listErr = nil
	run(e, e.Update(ReloadMsg{}))
	if vm := e.View(); vm.Error != "" || len(vm.Rows) != 2 {
		t.Fatalf("reload should clear the error, got %+v", vm)
	}
}

func TestDeleteIsTwoStep(t *testing.T) {
	store := newFakeStore()
	e := loaded(t, store)

	if cmd := e.Update(ConfirmDeleteMsg{}); cmd != nil {
		t.Fatalf("confirm without a request must do nothing")
	}
	e.Update(RequestDeleteMsg{ID: 1})
	vm := e.View()
	if vm.PendingDelete == nil || vm.PendingDelete.Name != "Ana Lee" {
		t.Fatalf("expected pending delete of Ana, got %+v", vm.PendingDelete)
	}
	if _, _, _, deletes := store.calls(); deletes != 0 {
		t.Fatalf("request alone must not delete")
	}

	e.Update(CancelDeleteMsg{})
	if e.View().PendingDelete != nil {
		t.Fatalf("cancel should clear the pending delete")
	}

	e.Update(RequestDeleteMsg{ID: 1})
	run(e, e.Update(ConfirmDeleteMsg{}))
	lists, _, _, deletes := store.calls()
	if deletes != 1 || lists != 2 {
		t.Fatalf("expected delete then one reload, got deletes=%d lists=%d", deletes, lists)
	}
	vm = e.View()
	if len(vm.Rows) != 1 || vm.Rows[0].Name != "Bo Park" || vm.PendingDelete != nil {
		t.Fatalf("unexpected view after delete %+v", vm)
	}
	if !hasNotification(vm, "Student deleted", notify.Success) {
		t.Fatalf("missing success notification")
	}
}

func TestFailedDeleteOnlyNotifies(t *testing.T) {
	store := newFakeStore()
	e := loaded(t, store)
	store.deleteErr = &client.TransportError{Op: "delete student", Status: 404}

	e.Update(RequestDeleteMsg{ID: 2})
	run(e, e.Update(ConfirmDeleteMsg{}))

	vm := e.View()
	if len(vm.Rows) != 2 || vm.Error != "" {
		t.Fatalf("collection must be untouched, got %+v", vm)
	}
	if !hasNotification(vm, "failed to delete student", notify.Error) {
		t.Fatalf("missing error notification")
	}
	if lists, _, _, _ := store.calls(); lists != 1 {
		t.Fatalf("failed delete must not reload")
	}
}

// overlappingReloads issues two reloads, lets them complete against
// different data, and delivers the responses newest first.
func overlappingReloads(t *testing.T, store *fakeStore, e *Engine) {
	t.Helper()
	first := e.Update(ReloadMsg{})
	second := e.Update(ReloadMsg{})

	older := first().(ListedMsg)
	store.mu.Lock()
	store.students = store.students[:1]
	store.mu.Unlock()
	newer := second().(ListedMsg)

	e.Update(newer)
	e.Update(older)
}

func TestLateReloadWinsByDefault(t *testing.T) {
	store := newFakeStore()
	e := loaded(t, store)
	overlappingReloads(t, store, e)
	if rows := e.View().Rows; len(rows) != 2 {
		t.Fatalf("the later-arriving response should win, got %d rows", len(rows))
	}
}

func TestDiscardStaleReloads(t *testing.T) {
	store := newFakeStore()
	e := loaded(t, store, WithDiscardStaleReloads(true))
	overlappingReloads(t, store, e)
	vm := e.View()
	if len(vm.Rows) != 1 {
		t.Fatalf("stale response should be dropped, got %d rows", len(vm.Rows))
	}
	if vm.Loading {
		t.Fatalf("both reloads completed")
	}
}

func TestLoadingUntilEveryReloadCompletes(t *testing.T) {
	e := loaded(t, newFakeStore())
	first := e.Update(ReloadMsg{})
	second := e.Update(ReloadMsg{})

	e.Update(second())
	if !e.View().Loading {
		t.Fatalf("the first reload is still outstanding")
	}
	e.Update(first())
	if e.View().Loading {
		t.Fatalf("both reloads completed")
	}
}

func TestToggleThemePersists(t *testing.T) {
	kv := prefs.NewMemory()
	mgr := theme.New(kv)
	if _, err := mgr.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	e := newEngine(newFakeStore(), WithTheme(mgr))
	if e.View().Theme != state.ThemeLight {
		t.Fatalf("expected light start")
	}
	e.Update(ToggleThemeMsg{})
	if e.View().Theme != state.ThemeDark {
		t.Fatalf("expected dark")
	}
	if v, _, _ := kv.Get(theme.Key); v != "dark" {
		t.Fatalf("theme not persisted, got %q", v)
	}

	bare := newEngine(newFakeStore())
	bare.Update(ToggleThemeMsg{})
	bare.Update(ToggleThemeMsg{})
	if bare.View().Theme != state.ThemeLight {
		t.Fatalf("double toggle should return to light")
	}
}

func TestDismissAndExpire(t *testing.T) {
	store := newFakeStore()
	store.deleteErr = errors.New("boom")
	e := loaded(t, store)
	for _, id := range []int64{1, 2} {
		e.Update(RequestDeleteMsg{ID: id})
		run(e, e.Update(ConfirmDeleteMsg{}))
	}
	notes := e.View().Notifications
	if len(notes) != 2 {
		t.Fatalf("expected two notifications, got %d", len(notes))
	}

	e.Update(DismissMsg{ID: notes[0].ID})
	if got := e.View().Notifications; len(got) != 1 || got[0].ID != notes[1].ID {
		t.Fatalf("dismiss removed the wrong notification: %+v", got)
	}
	e.Update(notify.ExpiredMsg{ID: notes[0].ID})
	e.Update(notify.ExpiredMsg{ID: notes[1].ID})
	if got := e.View().Notifications; len(got) != 0 {
		t.Fatalf("expected none left, got %+v", got)
	}
}

func TestRowOfPlaceholders(t *testing.T) {
	r := RowOf(&types.Student{ID: 9, FirstName: "Di", LastName: "Ng", Email: "di@example.com", GPA: types.Ptr(0.0)})
	if r.Major != Placeholder || r.Year != Placeholder || r.Phone != "" || r.Address != "" {
		t.Fatalf("unexpected placeholders %+v", r)
	}
	if r.GPA != "0.00" {
		t.Fatalf("gpa 0 is a value, got %q", r.GPA)
	}
	r = RowOf(&types.Student{GPA: types.Ptr(3.456), EnrollmentYear: types.Ptr(2020), Major: types.Ptr("Art")})
	if r.GPA != "3.46" || r.Year != "2020" || r.Major != "Art" {
		t.Fatalf("unexpected row %+v", r)
	}
}

func TestEmptyCollectionStats(t *testing.T) {
	store := newFakeStore()
	store.students = nil
	e := newEngine(store)
	run(e, e.Init())
	vm := e.View()
	if vm.Stats != (StatsView{Total: "0", AverageGPA: "0.00", Majors: "0", EarliestYear: Placeholder}) {
		t.Fatalf("unexpected stats %+v", vm.Stats)
	}
	if vm.Empty != EmptyText {
		t.Fatalf("expected empty text")
	}
}
