// Package session keeps the process-wide mapping from a comparison session
// ID to the pair of answer chains built for its two documents.
package session

import (
	"errors"
	"time"

	"github.com/finease/finease-backend/rag"
)

// ErrNotFound signals an unknown or expired session ID.
var ErrNotFound = errors.New("session not found")

// Session links a comparison request to its two prebuilt document chains.
// Sessions are never persisted; they live only as long as the store keeps
// them.
type Session struct {
	ID        string
	Doc1      *rag.AnswerChain
	Doc2      *rag.AnswerChain
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store registers and resolves sessions. Put overwrites an existing ID
// (IDs are freshly generated UUIDs, collision is not expected); Get returns
// ErrNotFound for absent or expired entries.
type Store interface {
	Put(s *Session)
	Get(id string) (*Session, error)
}
