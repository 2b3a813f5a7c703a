package cart

import (
	"context"
	"sync"

	"github.com/fjod/gizmo_store/internal/cache"
)

// MockStorage implements cache.Store and records every write
type MockStorage struct {
	mu       sync.RWMutex
	blobs    map[string][]byte
	GetErr   error
	SetErr   error
	GetCalls int
	Writes   []string

	// release, when set, blocks Get until it is closed
	release chan struct{}
}

func NewMockStorage() *MockStorage {
	return &MockStorage{blobs: make(map[string][]byte)}
}

func (m *MockStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	m.GetCalls++
	release := m.release
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	blob, ok := m.blobs[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return blob, nil
}

func (m *MockStorage) Set(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.blobs[key] = blob
	m.Writes = append(m.Writes, string(blob))
	return nil
}

func (m *MockStorage) Put(key, blob string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = []byte(blob)
}

func (m *MockStorage) Blob(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	return string(b), ok
}

func (m *MockStorage) WriteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Writes)
}

func (m *MockStorage) GetCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.GetCalls
}
