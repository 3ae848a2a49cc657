package inmemory

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/finease/finease-backend/rag"
	"github.com/finease/finease-backend/rag/session"
)

func TestPutAndGet(t *testing.T) {
	s := NewStore(time.Hour, 0)
	defer s.Stop()

	sess := &session.Session{ID: "abc"}
	s.Put(sess)

	got, err := s.Get("abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "abc" {
		t.Errorf("unexpected session: %+v", got)
	}
	if got.ExpiresAt.IsZero() {
		t.Error("expected TTL to be applied")
	}
}

func TestGetUnknown(t *testing.T) {
	s := NewStore(time.Hour, 0)
	defer s.Stop()

	if _, err := s.Get("missing"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetExpired(t *testing.T) {
	s := NewStore(time.Nanosecond, 0)
	defer s.Stop()

	s.Put(&session.Session{ID: "old"})
	time.Sleep(5 * time.Millisecond)

	if _, err := s.Get("old"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected expired session to be not found, got %v", err)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := NewStore(time.Hour, 0)
	defer s.Stop()

	first := &session.Session{ID: "dup"}
	second := &session.Session{ID: "dup"}
	s.Put(first)
	s.Put(second)

	got, err := s.Get("dup")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != second {
		t.Error("expected second Put to overwrite the first")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Len())
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := NewStore(time.Hour, 2)
	defer s.Stop()

	for i := 0; i < 3; i++ {
		s.Put(&session.Session{ID: fmt.Sprintf("s%d", i)})
		time.Sleep(2 * time.Millisecond) // distinct CreatedAt
	}

	if s.Len() != 2 {
		t.Fatalf("expected capacity bound of 2, got %d entries", s.Len())
	}
	if _, err := s.Get("s0"); !errors.Is(err, session.ErrNotFound) {
		t.Error("expected oldest session to be evicted")
	}
	if _, err := s.Get("s2"); err != nil {
		t.Errorf("expected newest session to survive: %v", err)
	}
}

func TestEvictionLeavesHeldSessionsUsable(t *testing.T) {
	s := NewStore(time.Hour, 1)
	defer s.Stop()

	ix, err := rag.NewIndex([]string{"fixed deposit rate 6.5% per annum"}, [][]float32{{1, 0, 0}})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	s.Put(&session.Session{ID: "s0", Doc1: rag.NewAnswerChain(ix, nil, 1)})

	held, err := s.Get("s0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Pushing past capacity evicts s0 while the handler still holds it.
	s.Put(&session.Session{ID: "s1"})
	if _, err := s.Get("s0"); !errors.Is(err, session.ErrNotFound) {
		t.Fatal("expected s0 to be evicted")
	}

	hits, err := held.Doc1.Index().KeywordSearch("rate", 1)
	if err != nil {
		t.Fatalf("search on a held, evicted session failed: %v", err)
	}
	if len(hits) == 0 {
		t.Error("expected a keyword hit from the held session")
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	s := NewStore(time.Nanosecond, 0)
	defer s.Stop()

	s.Put(&session.Session{ID: "x"})
	time.Sleep(2 * time.Millisecond)
	s.sweep()

	if s.Len() != 0 {
		t.Fatalf("expected sweep to drop expired entries, got %d", s.Len())
	}
}
