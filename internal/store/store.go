// Package store holds capture records between the scrape and clone
// stages. Records are immutable after Put, so reads never need a
// cross-entry invariant; the lock only brackets fast map operations.
package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/v0xg/siteclone/internal/capture"
)

// DefaultCapacity bounds the store so sustained traffic can't grow it
// without limit. Oldest entries are evicted first.
const DefaultCapacity = 256

// ErrNotFound is returned by Get for an unknown capture id.
var ErrNotFound = errors.New("store: capture not found")

// Store is an in-memory, process-lifetime capture store with a fixed
// capacity. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	capacity int
	captures map[string]*capture.Capture
	order    []string // insertion order, oldest first
}

// New creates a Store. capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		captures: make(map[string]*capture.Capture, capacity),
	}
}

// Put stores a capture and returns its id. Ids come from the capture
// engine's generator; a capture arriving without one gets a fresh UUID
// here. Either way the id is never derived from the source URL, so
// repeated captures of the same page stay distinct entries. When the
// store is full the oldest entry is dropped.
func (s *Store) Put(c *capture.Capture) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.captures, oldest)
	}

	s.captures[c.ID] = c
	s.order = append(s.order, c.ID)
	return c.ID
}

// Get returns the capture stored under id. Side-effect-free: repeated
// calls return the identical record.
func (s *Store) Get(id string) (*capture.Capture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.captures[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns all stored captures, oldest first.
func (s *Store) List() []*capture.Capture {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*capture.Capture, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.captures[id])
	}
	return out
}

// Len reports the number of stored captures.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
