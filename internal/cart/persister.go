package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fjod/gizmo_store/internal/cache"
	"github.com/fjod/gizmo_store/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultNamespace = "gizmos_cart"

	defaultWriteTimeout = time.Second
)

// Key is the storage key of a session's cart blob.
func Key(namespace, sessionID string) string {
	return fmt.Sprintf("%s:%s", namespace, sessionID)
}

// Persister mirrors a Store into a cache.Store. Nothing is written until the
// stored blob has been read back, so a fresh empty cart never overwrites a
// persisted one.
type Persister struct {
	storage      cache.Store
	key          string
	logger       *zap.Logger
	writeTimeout time.Duration
	hydrated     atomic.Bool
}

func NewPersister(storage cache.Store, key string, logger *zap.Logger) *Persister {
	return &Persister{
		storage:      storage,
		key:          key,
		logger:       logger.With(zap.String("cart_key", key)),
		writeTimeout: defaultWriteTimeout,
	}
}

func (p *Persister) Hydrated() bool {
	return p.hydrated.Load()
}

// Hydrate restores store from the persisted blob. A missing or malformed blob
// leaves the store empty and still counts as hydrated. A storage failure
// returns an error and keeps writes suppressed.
func (p *Persister) Hydrate(ctx context.Context, store *Store) error {
	if p.hydrated.Load() {
		return nil
	}

	blob, err := p.storage.Get(ctx, p.key)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		p.logger.Debug("no persisted cart")
	case err != nil:
		return fmt.Errorf("read persisted cart: %w", err)
	default:
		items, decodeErr := decodeItems(blob)
		if decodeErr != nil {
			p.logger.Debug("ignoring malformed persisted cart", zap.Error(decodeErr))
			break
		}
		store.Load(items)
	}

	p.hydrated.Store(true)
	return nil
}

// Save is a Store listener. States committed before hydration are dropped.
func (p *Persister) Save(state domain.CartState) {
	if !p.hydrated.Load() {
		p.logger.Debug("cart write suppressed before hydration")
		return
	}

	blob, err := json.Marshal(state)
	if err != nil {
		p.logger.Error("marshal cart failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()
	if err := p.storage.Set(ctx, p.key, blob); err != nil {
		p.logger.Warn("cart write failed", zap.Error(err))
	}
}

type persistedCart struct {
	Items *[]domain.CartItem `json:"items"`
}

func decodeItems(blob []byte) ([]domain.CartItem, error) {
	var persisted persistedCart
	if err := json.Unmarshal(blob, &persisted); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if persisted.Items == nil {
		return nil, errors.New("persisted cart has no items array")
	}
	return sanitize(*persisted.Items), nil
}

// sanitize drops lines that would break cart invariants: blank ids,
// non-positive quantities and repeated ids (first one wins).
func sanitize(items []domain.CartItem) []domain.CartItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
