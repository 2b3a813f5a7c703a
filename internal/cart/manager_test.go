package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManager_SameSessionForSameID(t *testing.T) {
	m := NewManager(NewMockStorage(), Options{}, zap.NewNop())
	defer m.Close()
	ctx := context.Background()

	a, err := m.Session(ctx, "abc")
	require.NoError(t, err)
	b, err := m.Session(ctx, "abc")
	require.NoError(t, err)
	c, err := m.Session(ctx, "other")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, m.Len())
}

func TestManager_ConcurrentFirstAccessHydratesOnce(t *testing.T) {
	storage := NewMockStorage()
	storage.Put("gizmos_cart:abc", persistedTwo)
	storage.release = make(chan struct{})
	m := NewManager(storage, Options{}, zap.NewNop())
	defer m.Close()

	var wg sync.WaitGroup
	sessions := make([]*Session, 10)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Session(context.Background(), "abc")
			assert.NoError(t, err)
			sessions[i] = s
		}(i)
	}

	require.Eventually(t, func() bool { return storage.GetCount() >= 1 }, time.Second, time.Millisecond)
	close(storage.release)
	wg.Wait()

	assert.LessOrEqual(t, storage.GetCount(), 2)
	for _, s := range sessions {
		assert.Same(t, sessions[0], s)
		assert.Len(t, s.View().Items, 2)
	}
}

func TestManager_RetriesFailedHydration(t *testing.T) {
	storage := NewMockStorage()
	storage.GetErr = errors.New("timeout")
	m := NewManager(storage, Options{}, zap.NewNop())
	defer m.Close()

	s, err := m.Session(context.Background(), "abc")
	require.Error(t, err)
	assert.False(t, s.Hydrated())

	storage.mu.Lock()
	storage.GetErr = nil
	storage.mu.Unlock()

	s2, err := m.Session(context.Background(), "abc")
	require.NoError(t, err)
	assert.Same(t, s, s2)
	assert.True(t, s2.Hydrated())
}

func TestManager_EvictsIdleSessions(t *testing.T) {
	m := NewManager(NewMockStorage(), Options{IdleTTL: time.Minute}, zap.NewNop())
	defer m.Close()

	now := time.Now()
	m.now = func() time.Time { return now }
	_, err := m.Session(context.Background(), "old")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.Session(context.Background(), "fresh")
	require.NoError(t, err)

	m.evictIdle()
	assert.Equal(t, 1, m.Len())
}

func TestManager_EvictNotifiesHook(t *testing.T) {
	var evicted []string
	m := NewManager(NewMockStorage(), Options{
		IdleTTL: time.Minute,
		OnEvict: func(id string) { evicted = append(evicted, id) },
	}, zap.NewNop())
	defer m.Close()

	now := time.Now()
	m.now = func() time.Time { return now }
	_, err := m.Session(context.Background(), "old")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	m.evictIdle()
	assert.Equal(t, []string{"old"}, evicted)
}
