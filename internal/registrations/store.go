// Package registrations holds the process-lifetime record store and the
// admin-facing HTTP endpoints over it.
package registrations

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/vstep-portal/backend/internal/models"
)

var (
	// ErrDuplicateID means an append collided with an existing record id.
	// Given the id-assignment policy this is an invariant violation, not a
	// user-facing condition.
	ErrDuplicateID = errors.New("duplicate record id")
	// ErrNotFound means no record exists with the requested id.
	ErrNotFound = errors.New("record not found")
)

// Store is an append-only, insertion-ordered collection of finalized
// registration records. It lives for the process lifetime and resets on
// restart; there is no update or delete.
type Store struct {
	mu      sync.RWMutex
	records []models.RegistrationRecord
	byID    map[string]int
}

// NewStore creates an empty record store.
func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Append adds one record. It fails only on id collision.
func (s *Store) Append(rec models.RegistrationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[rec.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	s.byID[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	return nil
}

// ListAll returns a snapshot of all records in insertion order. The returned
// slice is the caller's to keep; later appends do not show through.
func (s *Store) ListAll() []models.RegistrationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RegistrationRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (*models.RegistrationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	rec := s.records[i]
	return &rec, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// IDGenerator issues millisecond-epoch record ids, bumped to stay strictly
// increasing when two submissions land in the same millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
}

// NewIDGenerator creates an id generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns a fresh unique id derived from now.
func (g *IDGenerator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
