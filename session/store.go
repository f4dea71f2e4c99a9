package session

import (
	"container/list"
	"log/slog"
	"sync"

	"github.com/aldeia/advisor/core"
)

// MaxHistory is the number of turns a session retains. Older turns are
// evicted first-in first-out.
const MaxHistory = 5

// DefaultMaxSessions bounds the number of live sessions before the least
// recently used one is dropped.
const DefaultMaxSessions = 1024

// Session is the tracked state of one conversation.
type Session struct {
	ID          string
	History     []core.Turn
	Profile     core.UserProfile
	PageContext string
}

type entry struct {
	mu   sync.Mutex
	sess *Session
	elem *list.Element
}

// Store holds sessions keyed by conversation identifier.
type Store struct {
	mu          sync.Mutex
	entries     map[string]*entry
	lru         *list.List // front = most recently used; values are ids
	maxSessions int
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithMaxSessions sets the session capacity before LRU eviction kicks in.
// Values below 1 are raised to 1.
func WithMaxSessions(n int) Option {
	return func(s *Store) error {
		if n < 1 {
			n = 1
		}
		s.maxSessions = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a session store.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		entries:     make(map[string]*entry),
		lru:         list.New(),
		maxSessions: DefaultMaxSessions,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// getOrCreate returns the entry for id, creating it if absent, and marks it
// most recently used. Eviction of the LRU session happens here.
func (s *Store) getOrCreate(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if ok {
		s.lru.MoveToFront(e.elem)
		return e
	}

	e = &entry{sess: &Session{ID: id}}
	e.elem = s.lru.PushFront(id)
	s.entries[id] = e

	for s.lru.Len() > s.maxSessions {
		oldest := s.lru.Back()
		oldID := oldest.Value.(string)
		s.lru.Remove(oldest)
		delete(s.entries, oldID)
		s.logger.Debug("evicted session", "conversation", oldID)
	}
	return e
}

// Update runs fn against the session for id under the per-session lock.
// The session is created if it does not exist. fn sees the live session;
// mutations are visible to subsequent calls for the same id.
func (s *Store) Update(id string, fn func(*Session)) {
	e := s.getOrCreate(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.sess)
}

// AppendTurn appends a turn to the session history, evicting the oldest
// turn once the history exceeds MaxHistory.
func (s *Store) AppendTurn(id string, turn core.Turn) {
	s.Update(id, func(sess *Session) {
		sess.History = append(sess.History, turn)
		if len(sess.History) > MaxHistory {
			sess.History = sess.History[len(sess.History)-MaxHistory:]
		}
	})
}

// MergeProfile merges a partial profile into the session, field by field.
func (s *Store) MergeProfile(id string, profile core.UserProfile) {
	s.Update(id, func(sess *Session) {
		sess.Profile.Merge(profile)
	})
}

// SetPageContext records the page context the user is currently viewing.
func (s *Store) SetPageContext(id string, pageContext string) {
	s.Update(id, func(sess *Session) {
		sess.PageContext = pageContext
	})
}

// Snapshot returns a copy of the session for id, creating the session if it
// does not exist. The returned history slice is owned by the caller.
func (s *Store) Snapshot(id string) Session {
	e := s.getOrCreate(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := *e.sess
	snap.History = make([]core.Turn, len(e.sess.History))
	copy(snap.History, e.sess.History)
	return snap
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
