// Package inmemory bounds the session map by TTL and capacity so it cannot
// grow without limit over the process lifetime.
package inmemory

import (
	"log"
	"sync"
	"time"

	"github.com/finease/finease-backend/rag/session"
)

const sweepInterval = 5 * time.Minute

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	ttl      time.Duration
	capacity int

	stop chan struct{}
	once sync.Once
	log  *log.Logger
}

// NewStore creates a bounded in-memory session store and starts its
// janitor. ttl <= 0 disables expiry; capacity <= 0 disables the size bound.
func NewStore(ttl time.Duration, capacity int) *Store {
	s := &Store{
		sessions: make(map[string]*session.Session),
		ttl:      ttl,
		capacity: capacity,
		stop:     make(chan struct{}),
		log:      log.New(log.Writer(), "[SESSIONS] ", log.LstdFlags),
	}
	go s.janitor()
	return s
}

func (s *Store) Put(sess *session.Session) {
	now := time.Now()
	sess.CreatedAt = now
	if s.ttl > 0 {
		sess.ExpiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess

	// Oldest-first eviction when over capacity. Dropped sessions are not
	// closed here: a handler that resolved one earlier may still be
	// searching it, and the mem-only indexes are reclaimed by GC.
	for s.capacity > 0 && len(s.sessions) > s.capacity {
		var oldestID string
		var oldest time.Time
		for id, cand := range s.sessions {
			if id == sess.ID {
				continue
			}
			if oldestID == "" || cand.CreatedAt.Before(oldest) {
				oldestID = id
				oldest = cand.CreatedAt
			}
		}
		if oldestID == "" {
			break
		}
		delete(s.sessions, oldestID)
		s.log.Printf("evicted session %s (capacity %d)", oldestID, s.capacity)
	}
}

func (s *Store) Get(id string) (*session.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, session.ErrNotFound
	}
	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stop halts the janitor. Safe to call more than once.
func (s *Store) Stop() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Store) janitor() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.sweep()
		}
	}
}

func (s *Store) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if !sess.ExpiresAt.IsZero() && now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}
