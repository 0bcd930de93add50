package forms

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownForm     = errors.New("unknown form")
	ErrSessionNotFound = errors.New("form session not found")
)

// DefaultSessionTTL bounds how long an abandoned session is kept.
const DefaultSessionTTL = 2 * time.Hour

type session struct {
	kind   string
	form   Form
	modal  *Modal
	opened time.Time
}

// Sessions keeps the open modals of every visitor, keyed by a random id.
type Sessions struct {
	mu        sync.Mutex
	factories map[string]func() Form
	open      map[string]*session
	delay     time.Duration
	ttl       time.Duration
	now       func() time.Time
}

// NewSessions creates an empty registry. delay is the close transition
// length before a closed modal resets.
func NewSessions(delay time.Duration) *Sessions {
	return &Sessions{
		factories: map[string]func() Form{},
		open:      map[string]*session{},
		delay:     delay,
		ttl:       DefaultSessionTTL,
		now:       time.Now,
	}
}

// Register adds a form kind with the factory that builds a fresh controller.
func (s *Sessions) Register(kind string, factory func() Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[kind] = factory
}

// Kinds lists the registered form kinds.
func (s *Sessions) Kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]string, 0, len(s.factories))
	for k := range s.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New builds a standalone form of the given kind, outside any session.
func (s *Sessions) New(kind string) (Form, error) {
	s.mu.Lock()
	factory, ok := s.factories[kind]
	s.mu.Unlock()
	if !ok {
		return nil, ErrUnknownForm
	}
	return factory(), nil
}

// Open creates a form of the given kind inside an open modal.
func (s *Sessions) Open(kind string) (string, Form, error) {
	form, err := s.New(kind)
	if err != nil {
		return "", nil, err
	}

	id := uuid.NewString()
	modal := NewModal(form, s.delay)
	modal.OnReset(func() { s.remove(id) })
	modal.Open()

	s.mu.Lock()
	s.pruneLocked()
	s.open[id] = &session{kind: kind, form: form, modal: modal, opened: s.now()}
	s.mu.Unlock()
	return id, form, nil
}

// Get returns the form of an open session.
func (s *Sessions) Get(kind, id string) (Form, error) {
	sess, err := s.lookup(kind, id)
	if err != nil {
		return nil, err
	}
	if !sess.modal.IsOpen() {
		return nil, ErrSessionNotFound
	}
	return sess.form, nil
}

// Close closes the session's modal; the session goes away once the
// deferred reset has run.
func (s *Sessions) Close(kind, id string) error {
	sess, err := s.lookup(kind, id)
	if err != nil {
		return err
	}
	sess.modal.Close()
	return nil
}

// Dismiss closes and resets the session immediately.
func (s *Sessions) Dismiss(kind, id string) error {
	sess, err := s.lookup(kind, id)
	if err != nil {
		return err
	}
	sess.modal.Dismiss()
	return nil
}

// Len returns the number of tracked sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

func (s *Sessions) lookup(kind, id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.open[id]
	if !ok || sess.kind != kind {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Sessions) remove(id string) {
	s.mu.Lock()
	delete(s.open, id)
	s.mu.Unlock()
}

// pruneLocked drops sessions older than the TTL. Their forms are dropped
// without a reset since nothing references them afterwards.
func (s *Sessions) pruneLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.open {
		if sess.opened.Before(cutoff) {
			delete(s.open, id)
		}
	}
}
