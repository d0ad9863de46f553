// Package sessions tracks each client's place in the portal flow
// (compose, success, admin) and owns that client's draft.
package sessions

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vstep-portal/backend/internal/drafts"
	"github.com/vstep-portal/backend/internal/models"
)

var (
	// ErrNotFound means no session exists with the requested id.
	ErrNotFound = errors.New("session not found")
	// ErrBadTransition means the requested view change is not in the
	// transition table.
	ErrBadTransition = errors.New("view transition not allowed")
	// ErrSubmitInFlight means a submit for this session is already running.
	ErrSubmitInFlight = errors.New("submission already in progress")
)

// View is one of the three portal views.
type View string

const (
	ViewCompose View = "compose"
	ViewSuccess View = "success"
	ViewAdmin   View = "admin"
)

// ParseView validates a view name from a request body.
func ParseView(s string) (View, bool) {
	switch View(s) {
	case ViewCompose, ViewSuccess, ViewAdmin:
		return View(s), true
	}
	return "", false
}

// State is a snapshot of a session for API responses.
type State struct {
	ID           uuid.UUID    `json:"id"`
	View         View         `json:"view"`
	Draft        models.Draft `json:"draft"`
	LastRecordID string       `json:"lastRecordId,omitempty"`
	Submitting   bool         `json:"submitting"`
}

// Session is one client's long-lived portal session. It starts in the
// compose view with a fresh default draft and has no terminal state.
type Session struct {
	id      uuid.UUID
	builder *drafts.Builder

	mu           sync.Mutex
	view         View
	lastRecordID string
	submitting   bool
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

// Builder returns the draft builder owned by this session.
func (s *Session) Builder() *drafts.Builder { return s.builder }

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:           s.id,
		View:         s.view,
		Draft:        s.builder.Draft(),
		LastRecordID: s.lastRecordID,
		Submitting:   s.submitting,
	}
}

// BeginSubmit marks a submit as in flight. Submit is a compose-view event and
// at most one runs per session at a time.
func (s *Session) BeginSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != ViewCompose {
		return fmt.Errorf("%w: submit from %s", ErrBadTransition, s.view)
	}
	if s.submitting {
		return ErrSubmitInFlight
	}
	s.submitting = true
	return nil
}

// FinishSubmit records the created registration and moves to the success view.
func (s *Session) FinishSubmit(recordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	s.lastRecordID = recordID
	s.view = ViewSuccess
}

// AbortSubmit clears the in-flight flag after a failed submit; the session
// stays in compose with the draft intact for correction.
func (s *Session) AbortSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
}

// Reset starts a new registration: fresh default draft, no current record,
// back to compose. This is the only path that discards a draft.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builder.Reset()
	s.lastRecordID = ""
	s.view = ViewCompose
}

// Navigate switches views without touching the draft. Admin and compose are
// reachable from anywhere; success is only reachable again while the session
// still has a current record (e.g. returning from admin). While a submit is
// in flight the view is pinned, so a finished submit always lands in success
// from compose.
func (s *Session) Navigate(to View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return fmt.Errorf("%w: submission in progress", ErrBadTransition)
	}
	switch to {
	case ViewAdmin, ViewCompose:
	case ViewSuccess:
		if s.lastRecordID == "" {
			return fmt.Errorf("%w: no submitted registration to show", ErrBadTransition)
		}
	default:
		return fmt.Errorf("%w: unknown view %q", ErrBadTransition, to)
	}
	s.view = to
	return nil
}

// Manager is the in-memory session registry.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	defaults drafts.Defaults
}

// NewManager creates a session manager issuing drafts with the given defaults.
func NewManager(defaults drafts.Defaults) *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session), defaults: defaults}
}

// Create starts a new session in the compose view.
func (m *Manager) Create() *Session {
	s := &Session{
		id:      uuid.New(),
		builder: drafts.NewBuilder(m.defaults),
		view:    ViewCompose,
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}
