package forms

import (
	"context"
	"sync"
	"time"
)

// Resettable is anything a modal can blank out after it closes
type Resettable interface {
	Reset()
}

// Form is the type-erased side of a Controller, used where the concrete
// record type isn't known (the HTTP layer).
type Form interface {
	Resettable
	Snapshot() any
	ApplyJSON(raw []byte) error
	Run(ctx context.Context) (any, error)
}

// Modal wraps a form with open/close state. Closing defers the reset until
// the close transition has finished so the fields don't blank mid-animation.
type Modal struct {
	mu      sync.Mutex
	form    Resettable
	delay   time.Duration
	open    bool
	pending *time.Timer
	onReset func()
}

// NewModal creates a closed modal around form.
func NewModal(form Resettable, delay time.Duration) *Modal {
	return &Modal{form: form, delay: delay}
}

// OnReset registers fn to run after each reset.
func (m *Modal) OnReset(fn func()) {
	m.mu.Lock()
	m.onReset = fn
	m.mu.Unlock()
}

// Open shows the modal, cancelling a reset that hasn't run yet.
func (m *Modal) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}

// IsOpen reports whether the modal is showing.
func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Close hides the modal and schedules the reset after the close delay.
func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return
	}
	m.open = false
	if m.pending != nil {
		m.pending.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(m.delay, func() {
		m.mu.Lock()
		if m.pending != t || m.open {
			m.mu.Unlock()
			return
		}
		m.pending = nil
		m.mu.Unlock()
		m.reset()
	})
	m.pending = t
}

// Dismiss closes the modal and resets at once. Used when the user dismisses
// a success acknowledgement and there is no transition to wait for.
func (m *Modal) Dismiss() {
	m.mu.Lock()
	m.open = false
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.mu.Unlock()
	m.reset()
}

func (m *Modal) reset() {
	m.form.Reset()
	m.mu.Lock()
	fn := m.onReset
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}
