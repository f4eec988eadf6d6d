package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/laborwatch/cluedash/payload"
)

// Session is one processed upload: the rendered dashboard plus the workbook offered
// for download.
type Session struct {
	ID        string
	Dashboard *Dashboard
	Payload   *payload.Payload
	Workbook  []byte
	Filename  string
	Created   time.Time
	LastSeen  time.Time
}

// Store keeps sessions in memory. Nothing survives a restart.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Put stores s under a fresh id and returns it.
func (st *Store) Put(s *Session) string {
	st.mu.Lock()
	defer st.mu.Unlock()
	s.ID = uuid.New().String()
	now := st.now()
	s.Created = now
	s.LastSeen = now
	st.sessions[s.ID] = s
	return s.ID
}

// Get returns the session and marks it as seen.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		s.LastSeen = st.now()
	}
	return s, ok
}

// Delete drops the session and releases its dashboard.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok && s.Dashboard != nil {
		s.Dashboard.Destroy()
	}
}

// Evict deletes sessions not seen for longer than ttl and returns how many went.
func (st *Store) Evict(ttl time.Duration) int {
	st.mu.Lock()
	cutoff := st.now().Add(-ttl)
	var stale []*Session
	for id, s := range st.sessions {
		if s.LastSeen.Before(cutoff) {
			stale = append(stale, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range stale {
		if s.Dashboard != nil {
			s.Dashboard.Destroy()
		}
	}
	return len(stale)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
