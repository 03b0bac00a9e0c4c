package session

import (
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps sessions in memory
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new session for src under a random id
func (st *Store) Create(filename string, src image.Image) *Session {
	s := New(uuid.NewString(), filename, src)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get looks up a session by id
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes a session and reports whether it existed
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions unused for longer than maxAge, skipping sessions
// with a split in flight, and returns how many were removed.
func (st *Store) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.LastUsed().Before(cutoff) && !s.Splitting() {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
