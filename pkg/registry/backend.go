package registry

import (
	"context"
	"fmt"
	"sync"
)

// Backend is the host key/value medium the registry persists into. It mirrors
// a browser-style storage area: string keys, string values, one call per write.
type Backend interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Close() error
}

// MemoryBackend keeps items in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]string)}
}

// GetItem implements Backend.
func (m *MemoryBackend) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem implements Backend.
func (m *MemoryBackend) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

// RemoveItem implements Backend.
func (m *MemoryBackend) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error { return nil }

// QuotaBackend enforces a byte budget over the keys written through it. The
// size of an item is len(key)+len(value).
type QuotaBackend struct {
	Backend
	limit int64

	mu    sync.Mutex
	sizes map[string]int64
	used  int64
}

// WithQuota wraps b with a byte budget. A limit <= 0 disables the check.
func WithQuota(b Backend, limit int64) *QuotaBackend {
	return &QuotaBackend{Backend: b, limit: limit, sizes: make(map[string]int64)}
}

// Used returns the bytes currently accounted for.
func (q *QuotaBackend) Used() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used
}

// GetItem implements Backend and accounts for items already in the medium.
func (q *QuotaBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := q.Backend.GetItem(ctx, key)
	if err == nil && ok {
		q.mu.Lock()
		q.account(key, int64(len(key)+len(v)))
		q.mu.Unlock()
	}
	return v, ok, err
}

// SetItem implements Backend.
func (q *QuotaBackend) SetItem(ctx context.Context, key, value string) error {
	size := int64(len(key) + len(value))
	q.mu.Lock()
	defer q.mu.Unlock()
	if next := q.used - q.sizes[key] + size; q.limit > 0 && next > q.limit {
		return fmt.Errorf("set %q: %d bytes over a %d byte budget: %w", key, next, q.limit, ErrQuotaExceeded)
	}
	if err := q.Backend.SetItem(ctx, key, value); err != nil {
		return err
	}
	q.account(key, size)
	return nil
}

// RemoveItem implements Backend.
func (q *QuotaBackend) RemoveItem(ctx context.Context, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.Backend.RemoveItem(ctx, key); err != nil {
		return err
	}
	q.used -= q.sizes[key]
	delete(q.sizes, key)
	return nil
}

func (q *QuotaBackend) account(key string, size int64) {
	q.used += size - q.sizes[key]
	q.sizes[key] = size
}
