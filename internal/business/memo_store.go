package business

import (
	"context"
	"sync"
)

// MemoStore keeps the resolved image URL of every movie ID.
// Once a URL is stored for an ID it is never replaced.
type MemoStore interface {
	Get(ctx context.Context, id int) (url string, ok bool, err error)
	// SetIfAbsent stores url if id has no URL yet, and returns the URL stored for id
	SetIfAbsent(ctx context.Context, id int, url string) (stored string, err error)
}

// MemoryStore is a MemoStore living as long as its owner
type MemoryStore struct {
	mu   sync.RWMutex
	urls map[int]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls: make(map[int]string),
	}
}

func (ms *MemoryStore) Get(_ context.Context, id int) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	url, ok := ms.urls[id]
	return url, ok, nil
}

func (ms *MemoryStore) SetIfAbsent(_ context.Context, id int, url string) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if stored, ok := ms.urls[id]; ok {
		return stored, nil
	}
	ms.urls[id] = url
	return url, nil
}

// Len returns the number of memoized IDs
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.urls)
}
