package draft

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one editing session: a draft plus the bookkeeping the
// handlers need. All access goes through the embedded mutex because a
// browser can fire overlapping form posts at the same draft.
type Session struct {
	sync.Mutex
	ID    string
	Draft *Draft

	lastTouch time.Time
}

func (s *Session) Touch() { s.lastTouch = time.Now() }

// Store keeps live editing sessions in memory. Drafts have no life
// beyond the session, so nothing here is persisted.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (st *Store) Put(d *Draft) *Session {
	s := &Session{ID: uuid.NewString(), Draft: d, lastTouch: time.Now()}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	return s, ok
}

// Discard drops the session and releases every spool file its draft
// still holds.
func (st *Store) Discard(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.Lock()
		s.Draft.Release()
		s.Unlock()
	}
}

// PurgeIdle discards sessions untouched for longer than maxIdle and
// reports how many went. Runs from the cron janitor so abandoned
// drafts do not pile spool files up forever.
func (st *Store) PurgeIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	st.mu.Lock()
	var stale []*Session
	for id, s := range st.sessions {
		if s.lastTouch.Before(cutoff) {
			stale = append(stale, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range stale {
		s.Lock()
		s.Draft.Release()
		s.Unlock()
	}
	return len(stale)
}

// Count reports live sessions, for the dashboard.
func (st *Store) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
