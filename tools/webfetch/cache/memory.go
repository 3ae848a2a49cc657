package cache

import (
	"context"
	"sync"
	"time"

	"github.com/finease/finease-backend/tools/webfetch/models"
)

type memoryEntry struct {
	page      models.Page
	expiresAt time.Time
}

// Memory is a process-local page cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, url string) (models.Page, bool) {
	m.mu.RLock()
	e, ok := m.entries[url]
	m.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return models.Page{}, false
	}
	return e.page, true
}

func (m *Memory) Set(_ context.Context, url string, page models.Page, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[url] = memoryEntry{page: page, expiresAt: time.Now().Add(ttl)}
}
