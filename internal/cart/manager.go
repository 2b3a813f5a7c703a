package cart

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/gizmo_store/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTTL is how long an untouched session stays in memory
	DefaultIdleTTL = 30 * time.Minute

	// CleanupInterval is how often idle sessions are dropped
	CleanupInterval = time.Minute
)

type Options struct {
	Namespace string
	IdleTTL   time.Duration

	// OnEvict is called with the id of every session dropped for idleness.
	OnEvict func(sessionID string)
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Manager hands out one Session per session id and hydrates it once.
// Idle sessions are dropped from memory; their state is already persisted.
type Manager struct {
	storage   cache.Store
	namespace string
	idleTTL   time.Duration
	onEvict   func(string)
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
	sfg      singleflight.Group // one hydration read per session

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewManager(storage cache.Store, opts Options, logger *zap.Logger) *Manager {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}

	m := &Manager{
		storage:     storage,
		namespace:   opts.Namespace,
		idleTTL:     opts.IdleTTL,
		onEvict:     opts.OnEvict,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]*entry),
		stopCleanup: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// Session returns the session for id, hydrating it on first use. When the
// persisted cart cannot be read the session is still returned, unhydrated,
// together with the error; the next call retries the read.
func (m *Manager) Session(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if !ok {
		e = &entry{session: NewSession(id, m.storage, m.namespace, m.logger)}
		m.sessions[id] = e
	}
	e.lastSeen = m.now()
	m.mu.Unlock()

	if e.session.Hydrated() {
		return e.session, nil
	}

	_, err, _ := m.sfg.Do(id, func() (interface{}, error) {
		return nil, e.session.Hydrate(ctx)
	})
	if err != nil {
		m.logger.Warn("cart hydration failed", zap.String("session_id", id), zap.Error(err))
	}
	return e.session, err
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the cleanup goroutine.
func (m *Manager) Close() {
	close(m.stopCleanup)
	m.wg.Wait()
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) evictIdle() {
	m.mu.Lock()
	cutoff := m.now().Add(-m.idleTTL)
	var evicted []string
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	m.mu.Unlock()

	if m.onEvict == nil {
		return
	}
	for _, id := range evicted {
		m.onEvict(id)
	}
}
