// Package notify keeps the short-lived messages shown to the user after an
// operation. Each notification expires on its own timer; dismissing one
// never touches the others.
package notify

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3200 * time.Millisecond

// Severity drives how a notification is styled.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Error   Severity = "error"
)

type Notification struct {
	ID       string
	Message  string
	Severity Severity
	PushedAt time.Time
}

// ExpiredMsg is delivered when a notification's timer fires.
type ExpiredMsg struct {
	ID string
}

// Center is not safe for concurrent use.
type Center struct {
	ttl   time.Duration
	now   func() time.Time
	items []Notification
}

type Option func(*Center)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

func New(opts ...Option) *Center {
	c := &Center{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Center) TTL() time.Duration { return c.ttl }

// Push enqueues a notification and returns the command that will expire it.
func (c *Center) Push(message string, severity Severity) (Notification, tea.Cmd) {
	n := Notification{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
		PushedAt: c.now(),
	}
	c.items = append(c.items, n)

	id := n.ID
	return n, tea.Tick(c.ttl, func(time.Time) tea.Msg { return ExpiredMsg{ID: id} })
}

// Expire removes the notification when its timer fires. Unknown ids are
// ignored so a late timer after a manual dismiss is harmless.
func (c *Center) Expire(id string) { c.remove(id) }

// Dismiss removes the notification immediately.
func (c *Center) Dismiss(id string) { c.remove(id) }

// Active returns the live notifications in push order. A notification whose
// age has reached the TTL is not returned even if its timer has not fired.
func (c *Center) Active() []Notification {
	now := c.now()
	out := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		if now.Sub(n.PushedAt) < c.ttl {
			out = append(out, n)
		}
	}
	return out
}

func (c *Center) remove(id string) {
	c.items = slices.DeleteFunc(c.items, func(n Notification) bool { return n.ID == id })
}
