// Package ui is the interactive terminal front end. It turns key presses
// into roster intents and draws the engine's view model; all roster state
// lives in the engine.
package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aanand-mishra/student-roster/internal/filter"
	"github.com/aanand-mishra/student-roster/internal/roster"
	"github.com/aanand-mishra/student-roster/internal/state"
	"github.com/aanand-mishra/student-roster/internal/workflow"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
)

var formFields = []struct {
	label string
	value func(*workflow.Form) *string
}{
	{"First name*", func(f *workflow.Form) *string { return &f.FirstName }},
	{"Last name*", func(f *workflow.Form) *string { return &f.LastName }},
	{"Email*", func(f *workflow.Form) *string { return &f.Email }},
	{"Phone", func(f *workflow.Form) *string { return &f.Phone }},
	{"Date of birth", func(f *workflow.Form) *string { return &f.DateOfBirth }},
	{"Address", func(f *workflow.Form) *string { return &f.Address }},
	{"Major", func(f *workflow.Form) *string { return &f.Major }},
	{"GPA", func(f *workflow.Form) *string { return &f.GPA }},
	{"Enrollment year", func(f *workflow.Form) *string { return &f.EnrollmentYear }},
}

var sortKeys = []filter.SortKey{filter.SortName, filter.SortGPA, filter.SortYear}

type Model struct {
	engine *roster.Engine
	vm     roster.ViewModel

	mode   mode
	search textinput.Model
	table  table.Model
	fields []textinput.Model
	focus  int

	theme  state.Theme
	styles styles
}

// Run starts the full-screen program and blocks until the user quits.
func Run(engine *roster.Engine) error {
	_, err := tea.NewProgram(New(engine), tea.WithAltScreen()).Run()
	return err
}

func New(engine *roster.Engine) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search name, email, phone"
	search.CharLimit = 64
	search.Width = 30

	fields := make([]textinput.Model, len(formFields))
	for i := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 128
		ti.Width = 36
		fields[i] = ti
	}

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 4},
			{Title: "Name", Width: 22},
			{Title: "Email", Width: 26},
			{Title: "Phone", Width: 14},
			{Title: "Major", Width: 14},
			{Title: "GPA", Width: 5},
			{Title: "Year", Width: 5},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	m := Model{engine: engine, search: search, table: tbl, fields: fields}
	return m.sync()
}

func (m Model) Init() tea.Cmd {
	return m.engine.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(3, msg.Height-16))
		m.search.Width = max(20, msg.Width/3)
		return m, nil
	}
	return m.dispatch(msg)
}

// dispatch hands msg to the engine and refreshes the widgets.
func (m Model) dispatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.engine.Update(msg)
	return m.sync(), cmd
}

func (m Model) sync() Model {
	m.vm = m.engine.View()

	if m.vm.Theme != m.theme || m.styles.toast == nil {
		m.theme = m.vm.Theme
		m.styles = stylesFor(m.theme)
		m.table.SetStyles(m.styles.table)
	}

	rows := make([]table.Row, len(m.vm.Rows))
	for i, r := range m.vm.Rows {
		rows[i] = table.Row{strconv.FormatInt(r.ID, 10), r.Name, r.Email, r.Phone, r.Major, r.GPA, r.Year}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}

	switch {
	case m.vm.Modal != nil && m.mode != modeForm:
		m.mode = modeForm
		m.loadForm(m.vm.Modal.Form)
	case m.vm.Modal == nil && m.mode == modeForm:
		m.mode = modeList
	}
	return m
}

func (m *Model) loadForm(f workflow.Form) {
	for i, field := range formFields {
		m.fields[i].SetValue(*field.value(&f))
		m.fields[i].Blur()
	}
	m.focus = 0
	m.fields[0].Focus()
}

func (m Model) formValues() workflow.Form {
	var f workflow.Form
	for i, field := range formFields {
		*field.value(&f) = m.fields[i].Value()
	}
	return f
}

func (m Model) selectedID() (int64, bool) {
	row := m.table.SelectedRow()
	if row == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	return id, err == nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.vm.PendingDelete != nil {
		return m.updateDeleteConfirm(key)
	}
	switch m.mode {
	case modeForm:
		return m.updateFormMode(key, msg)
	case modeSearch:
		return m.updateSearchMode(key, msg)
	}
	return m.updateListMode(key, msg)
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		return m.dispatch(roster.ConfirmDeleteMsg{})
	case "n", "N", "esc":
		return m.dispatch(roster.CancelDeleteMsg{})
	}
	return m, nil
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		return m.dispatch(roster.CancelEditMsg{})
	case "enter":
		return m.dispatch(roster.SubmitMsg{Form: m.formValues()})
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) moveFocus(delta int) {
	m.fields[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	m.fields[m.focus].Focus()
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "enter":
		m.mode = modeList
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	next, engineCmd := m.dispatch(roster.SearchMsg{Text: m.search.Value()})
	return next, tea.Batch(cmd, engineCmd)
}

func (m Model) updateListMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "/":
		m.mode = modeSearch
		return m, m.search.Focus()
	case "a":
		return m.dispatch(roster.OpenCreateMsg{})
	case "e", "enter":
		if id, ok := m.selectedID(); ok {
			return m.dispatch(roster.OpenEditMsg{ID: id})
		}
	case "d":
		if id, ok := m.selectedID(); ok {
			return m.dispatch(roster.RequestDeleteMsg{ID: id})
		}
	case "s":
		return m.dispatch(roster.SortMsg{Key: cycle(sortKeys, m.vm.Criteria.SortKey)})
	case "m":
		return m.dispatch(roster.MajorFilterMsg{Major: cycle(append([]string{""}, m.vm.Options.Majors...), m.vm.Criteria.Major)})
	case "v":
		years := []string{""}
		for _, y := range m.vm.Options.Years {
			years = append(years, strconv.Itoa(y))
		}
		return m.dispatch(roster.YearFilterMsg{Year: cycle(years, m.vm.Criteria.Year)})
	case "t":
		return m.dispatch(roster.ToggleThemeMsg{})
	case "r":
		return m.dispatch(roster.ReloadMsg{})
	case "x":
		if len(m.vm.Notifications) > 0 {
			return m.dispatch(roster.DismissMsg{ID: m.vm.Notifications[0].ID})
		}
	case "up", "down", "k", "j", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// cycle returns the option after current, wrapping around. An unknown
// current value yields the first option.
func cycle[T comparable](options []T, current T) T {
	i := slices.Index(options, current)
	return options[(i+1)%len(options)]
}

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.title.Render("Student Roster"))
	b.WriteString(s.muted.Render(fmt.Sprintf("  %s theme", m.vm.Theme)))
	b.WriteString("\n\n")

	st := m.vm.Stats
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		s.stat.Render("Total "+st.Total),
		s.stat.Render("Avg GPA "+st.AverageGPA),
		s.stat.Render("Majors "+st.Majors),
		s.stat.Render("Earliest "+st.EarliestYear),
	))
	b.WriteString("\n\n")

	b.WriteString(m.search.View())
	b.WriteString(s.muted.Render(fmt.Sprintf("   sort: %s  major: %s  year: %s",
		m.vm.Criteria.SortKey, orAll(m.vm.Criteria.Major, "majors"), orAll(m.vm.Criteria.Year, "years"))))
	b.WriteString("\n\n")

	switch {
	case m.vm.Modal != nil:
		b.WriteString(m.renderForm())
	case m.vm.Error != "":
		b.WriteString(s.err.Render(m.vm.Error))
	case len(m.vm.Rows) == 0:
		b.WriteString(s.muted.Render(m.vm.Empty))
	default:
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	if m.vm.Loading {
		b.WriteString(s.muted.Render("Loading…"))
		b.WriteString("\n")
	}
	if d := m.vm.PendingDelete; d != nil {
		b.WriteString(s.err.Render(fmt.Sprintf("Delete %s? y/n", d.Name)))
		b.WriteString("\n")
	}

	for _, n := range m.vm.Notifications {
		b.WriteString(s.toast[n.Severity].Render(n.Message))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.muted.Render(m.help()))
	return b.String()
}

func (m Model) renderForm() string {
	s := m.styles
	modal := m.vm.Modal

	var b strings.Builder
	b.WriteString(s.title.Render(modal.Title))
	b.WriteString("\n\n")
	for i, field := range formFields {
		label := s.label
		if i == m.focus {
			label = s.focused
		}
		b.WriteString(label.Render(field.label))
		b.WriteString(m.fields[i].View())
		b.WriteString("\n")
	}
	if modal.Error != "" {
		b.WriteString("\n")
		b.WriteString(s.err.Render(modal.Error))
	}
	if modal.Pending {
		b.WriteString("\n")
		b.WriteString(s.muted.Render("Saving…"))
	}
	return s.box.Render(b.String())
}

func (m Model) help() string {
	switch m.mode {
	case modeForm:
		return "tab/shift+tab move • enter save • esc cancel"
	case modeSearch:
		return "type to search • enter/esc done"
	}
	return "/ search • a add • e edit • d delete • s sort • m major • v year • t theme • r reload • x dismiss • q quit"
}

func orAll(v, what string) string {
	if v == "" {
		return "all " + what
	}
	return v
}
