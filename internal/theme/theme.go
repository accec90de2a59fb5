// Package theme persists the light/dark choice.
package theme

import (
	"fmt"

	"github.com/aanand-mishra/student-roster/internal/prefs"
	"github.com/aanand-mishra/student-roster/internal/state"
)

// Key is the preference key holding the theme.
const Key = "theme"

type Manager struct {
	kv      prefs.KV
	current state.Theme
}

func New(kv prefs.KV) *Manager {
	return &Manager{kv: kv, current: state.ThemeLight}
}

// Load reads the persisted theme. Absent or unrecognised values mean light.
func (m *Manager) Load() (state.Theme, error) {
	v, ok, err := m.kv.Get(Key)
	if err != nil {
		m.current = state.ThemeLight
		return m.current, fmt.Errorf("load theme: %w", err)
	}
	if ok && state.Theme(v) == state.ThemeDark {
		m.current = state.ThemeDark
	} else {
		m.current = state.ThemeLight
	}
	return m.current, nil
}

// Toggle flips the theme and persists it. The in-memory value flips even
// when the write fails.
func (m *Manager) Toggle() (state.Theme, error) {
	if m.current == state.ThemeDark {
		m.current = state.ThemeLight
	} else {
		m.current = state.ThemeDark
	}
	if err := m.kv.Set(Key, string(m.current)); err != nil {
		return m.current, fmt.Errorf("save theme: %w", err)
	}
	return m.current, nil
}

func (m *Manager) Current() state.Theme { return m.current }
