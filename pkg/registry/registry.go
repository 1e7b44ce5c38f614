// Package registry is a durable string key/value store for size-constrained
// media.
//
// Writes land in memory immediately. Persisting is debounced: the first write
// arms a timer, later writes push it back, and when it fires the whole set is
// encoded into one flat string (see Encode) and stored under a single
// namespace key with one Backend call. Flush outcomes are only observable
// through Hooks; they never surface on the write path.
package registry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-board/pkg/debounce"
)

const (
	// DefaultStorageKey namespaces the flat string inside the backend.
	DefaultStorageKey = "grove-board"

	// DefaultFlushDelay is the debounce window.
	DefaultFlushDelay = 100 * time.Millisecond
)

// ResetMode selects what Reset clears.
type ResetMode int

const (
	// ResetSoft clears memory; the empty set is persisted by the next flush.
	ResetSoft ResetMode = iota
	// ResetHard also erases the backend key right away.
	ResetHard
)

// Registry is the in-memory view of the persisted key/value set.
type Registry struct {
	backend Backend
	key     string
	delay   time.Duration
	hooks   Hooks
	log     logrus.FieldLogger

	mu     sync.RWMutex
	items  map[string]string
	dirty  bool
	closed bool

	flushMu sync.Mutex
	task    *debounce.Task
}

// Option configures a Registry.
type Option func(*Registry)

// WithStorageKey sets the namespace key inside the backend.
func WithStorageKey(key string) Option {
	return func(r *Registry) { r.key = key }
}

// WithFlushDelay sets the debounce window.
func WithFlushDelay(d time.Duration) Option {
	return func(r *Registry) { r.delay = d }
}

// WithHooks sets the flush outcome hooks.
func WithHooks(h Hooks) Option {
	return func(r *Registry) { r.hooks = h }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Registry) { r.log = l }
}

// Open loads the registry stored in backend.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Registry, error) {
	r := &Registry{
		backend: backend,
		key:     DefaultStorageKey,
		delay:   DefaultFlushDelay,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithFields(logrus.Fields{"component": "registry", "storage_key": r.key})
	r.hooks = r.hooks.withDefaults(r.log)
	r.task = debounce.New(r.delay, func() {
		_ = r.flush(context.Background())
	})

	flat, _, err := backend.GetItem(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	items, malformed := Decode(flat)
	for _, m := range malformed {
		r.log.WithField("item", m).Warn("skipping malformed registry item")
	}
	r.items = items
	return r, nil
}

// SetKeyString stores value under key.
func (r *Registry) SetKeyString(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrStore)
	}
	if containsSeparator(key) {
		return fmt.Errorf("%w: key %q contains a reserved separator", ErrStore, key)
	}
	if containsSeparator(value) {
		return fmt.Errorf("%w: value for %q contains a reserved separator", ErrStore, key)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.items[key] = value
	r.dirty = true
	r.mu.Unlock()

	r.task.Schedule()
	return nil
}

// SetKey stores a string, number, bool or fmt.Stringer under key.
func (r *Registry) SetKey(key string, value any) error {
	s, err := coerce(value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return r.SetKeyString(key, s)
}

func coerce(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: unsupported value type %T", ErrStore, value)
	}
}

// ResetKey removes key. Absent keys are ignored.
func (r *Registry) ResetKey(key string) {
	r.mu.Lock()
	_, ok := r.items[key]
	changed := ok && !r.closed
	if changed {
		delete(r.items, key)
		r.dirty = true
	}
	r.mu.Unlock()

	if changed {
		r.task.Schedule()
	}
}

// GetKey returns the value stored under key.
func (r *Registry) GetKey(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[key]
	return v, ok
}

// Keys returns every key in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.items))
}

// NumberKeys returns the number of keys.
func (r *Registry) NumberKeys() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Empty reports whether no key is set.
func (r *Registry) Empty() bool {
	return r.NumberKeys() == 0
}

// Reset clears every key. ResetHard additionally removes the persisted string.
func (r *Registry) Reset(ctx context.Context, mode ResetMode) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.items = make(map[string]string)
	r.dirty = mode != ResetHard
	r.mu.Unlock()

	if mode != ResetHard {
		r.task.Schedule()
		return nil
	}

	r.task.Cancel()
	r.flushMu.Lock()
	defer r.flushMu.Unlock()
	if err := r.backend.RemoveItem(ctx, r.key); err != nil {
		return fmt.Errorf("erase registry: %w", err)
	}
	return nil
}

// Pending reports whether a debounced flush is scheduled.
func (r *Registry) Pending() bool {
	return r.task.Pending()
}

// Flush cancels any pending timer and writes unsaved changes now. The
// outcome is reported to the hooks as well as returned.
func (r *Registry) Flush(ctx context.Context) error {
	r.task.Cancel()
	return r.flush(ctx)
}

// Close flushes unsaved changes and rejects later writes. The backend is left
// open; it belongs to the caller.
func (r *Registry) Close(ctx context.Context) error {
	err := r.Flush(ctx)
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return err
}

func (r *Registry) flush(ctx context.Context) error {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	r.mu.Lock()
	if !r.dirty {
		r.mu.Unlock()
		return nil
	}
	flat := Encode(r.items)
	keys := len(r.items)
	r.dirty = false
	r.mu.Unlock()

	if err := r.backend.SetItem(ctx, r.key, flat); err != nil {
		// Keep the changes marked unsaved so an explicit Flush or Close can
		// try again. Nothing is retried here.
		r.mu.Lock()
		r.dirty = true
		r.mu.Unlock()

		if errors.Is(err, ErrQuotaExceeded) {
			flushTotal.WithLabelValues(OutcomeQuota).Inc()
			r.hooks.OnQuotaExceeded(err)
		} else {
			flushTotal.WithLabelValues(OutcomeError).Inc()
			r.hooks.OnError(err)
		}
		return err
	}

	flushTotal.WithLabelValues(OutcomeOK).Inc()
	flushBytes.Observe(float64(len(flat)))
	r.hooks.OnFlushed(FlushResult{Keys: keys, Bytes: len(flat)})
	return nil
}
