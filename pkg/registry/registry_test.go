package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 20 * time.Millisecond

// countingBackend records every SetItem call made against the wrapped backend.
type countingBackend struct {
	Backend
	writes atomic.Int32
	err    error
}

func (c *countingBackend) SetItem(ctx context.Context, key, value string) error {
	c.writes.Add(1)
	if c.err != nil {
		return c.err
	}
	return c.Backend.SetItem(ctx, key, value)
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func openTestRegistry(t *testing.T, b Backend, opts ...Option) *Registry {
	t.Helper()
	opts = append([]Option{WithFlushDelay(testDelay), WithLogger(quietLogger())}, opts...)
	r, err := Open(context.Background(), b, opts...)
	require.NoError(t, err)
	return r
}

func TestSetAndGet(t *testing.T) {
	r := openTestRegistry(t, NewMemoryBackend())
	assert.True(t, r.Empty())

	require.NoError(t, r.SetKeyString("b", "2"))
	require.NoError(t, r.SetKeyString("a", "1"))

	v, ok := r.GetKey("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = r.GetKey("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, r.Keys())
	assert.Equal(t, 2, r.NumberKeys())
	assert.False(t, r.Empty())
}

func TestSetKeyStringRejectsInvalidEntries(t *testing.T) {
	r := openTestRegistry(t, NewMemoryBackend())

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"empty key", "", "v"},
		{"pair separator in key", "a" + PairSeparator + "b", "v"},
		{"item separator in key", "a" + ItemSeparator, "v"},
		{"pair separator in value", "k", PairSeparator},
		{"item separator in value", "k", "x" + ItemSeparator + "y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.SetKeyString(tt.key, tt.value)
			assert.ErrorIs(t, err, ErrStore)
		})
	}
	assert.True(t, r.Empty())
	assert.False(t, r.Pending())
}

type stringer struct{}

func (stringer) String() string { return "stringer" }

func TestSetKeyCoercion(t *testing.T) {
	r := openTestRegistry(t, NewMemoryBackend())

	tests := []struct {
		value any
		want  string
	}{
		{"s", "s"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint8(255), "255"},
		{1.5, "1.5"},
		{float32(0.25), "0.25"},
		{true, "true"},
		{stringer{}, "stringer"},
	}
	for _, tt := range tests {
		require.NoError(t, r.SetKey("k", tt.value))
		got, _ := r.GetKey("k")
		assert.Equal(t, tt.want, got)
	}

	err := r.SetKey("k", struct{ X int }{1})
	assert.ErrorIs(t, err, ErrStore)
	err = r.SetKey("k", []string{"a"})
	assert.ErrorIs(t, err, ErrStore)
}

func TestResetKeyOnMissingKey(t *testing.T) {
	r := openTestRegistry(t, NewMemoryBackend())
	require.NoError(t, r.SetKeyString("a", "1"))
	require.NoError(t, r.Flush(context.Background()))

	before := r.Keys()
	r.ResetKey("nope")
	assert.Equal(t, before, r.Keys())
	assert.False(t, r.Pending())

	r.ResetKey("a")
	assert.True(t, r.Empty())
	assert.True(t, r.Pending())
}

func TestRoundTripThroughBackend(t *testing.T) {
	backend := NewMemoryBackend()
	r := openTestRegistry(t, backend)

	want := map[string]string{
		"plain":       "value",
		"empty":       "",
		"unicode":     "héllo ✓ 世界",
		"multi\nline": "a\nb\tc",
		"angle<":      "␟>",
		"brace{":      "␞}",
		"number":      "12.5",
	}
	for k, v := range want {
		require.NoError(t, r.SetKeyString(k, v))
	}

	require.Eventually(t, func() bool {
		flat, ok, _ := backend.GetItem(context.Background(), DefaultStorageKey)
		return ok && flat != ""
	}, time.Second, 5*time.Millisecond)

	reloaded := openTestRegistry(t, backend)
	for k, v := range want {
		got, ok := reloaded.GetKey(k)
		assert.True(t, ok, k)
		assert.Equal(t, v, got, k)
	}
	assert.Equal(t, len(want), reloaded.NumberKeys())
}

func TestRapidWritesCoalesceIntoOneFlush(t *testing.T) {
	backend := &countingBackend{Backend: NewMemoryBackend()}
	r := openTestRegistry(t, backend)

	require.NoError(t, r.SetKeyString("a", "1"))
	require.NoError(t, r.SetKeyString("b", "2"))
	assert.Equal(t, int32(0), backend.writes.Load(), "writes are deferred")

	require.Eventually(t, func() bool { return backend.writes.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * testDelay)
	assert.Equal(t, int32(1), backend.writes.Load())

	flat, _, _ := backend.GetItem(context.Background(), DefaultStorageKey)
	assert.Equal(t, "a"+PairSeparator+"1"+ItemSeparator+"b"+PairSeparator+"2", flat)
}

func TestFlushWithoutChangesDoesNotWrite(t *testing.T) {
	backend := &countingBackend{Backend: NewMemoryBackend()}
	r := openTestRegistry(t, backend)

	require.NoError(t, r.Flush(context.Background()))
	assert.Equal(t, int32(0), backend.writes.Load())
}

func TestQuotaExceededHook(t *testing.T) {
	var (
		mu        sync.Mutex
		quotaErrs []error
		otherErrs []error
		flushed   []FlushResult
	)
	hooks := Hooks{
		OnFlushed:       func(res FlushResult) { mu.Lock(); flushed = append(flushed, res); mu.Unlock() },
		OnQuotaExceeded: func(err error) { mu.Lock(); quotaErrs = append(quotaErrs, err); mu.Unlock() },
		OnError:         func(err error) { mu.Lock(); otherErrs = append(otherErrs, err); mu.Unlock() },
	}
	backend := WithQuota(NewMemoryBackend(), 40)
	r := openTestRegistry(t, backend, WithHooks(hooks))

	quotaBefore := testutil.ToFloat64(flushTotal.WithLabelValues(OutcomeQuota))
	okBefore := testutil.ToFloat64(flushTotal.WithLabelValues(OutcomeOK))

	require.NoError(t, r.SetKeyString("k", "small"))
	require.NoError(t, r.Flush(context.Background()))

	require.NoError(t, r.SetKeyString("big", "this value will not fit in the budget"), "writes never fail for capacity")
	err := r.Flush(context.Background())
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, flushed, 1)
	assert.Len(t, quotaErrs, 1)
	assert.Empty(t, otherErrs)
	assert.Equal(t, quotaBefore+1, testutil.ToFloat64(flushTotal.WithLabelValues(OutcomeQuota)))
	assert.Equal(t, okBefore+1, testutil.ToFloat64(flushTotal.WithLabelValues(OutcomeOK)))

	v, ok := r.GetKey("big")
	assert.True(t, ok, "memory keeps the write after a failed flush")
	assert.NotEmpty(t, v)
}

func TestGenericErrorHook(t *testing.T) {
	var quota, other atomic.Int32
	hooks := Hooks{
		OnQuotaExceeded: func(error) { quota.Add(1) },
		OnError:         func(error) { other.Add(1) },
	}
	backend := &countingBackend{Backend: NewMemoryBackend(), err: errors.New("disk on fire")}
	r := openTestRegistry(t, backend, WithHooks(hooks))

	require.NoError(t, r.SetKeyString("a", "1"))
	require.Eventually(t, func() bool { return other.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), quota.Load())
	assert.Equal(t, int32(1), backend.writes.Load(), "no automatic retry")
}

func TestReset(t *testing.T) {
	ctx := context.Background()

	t.Run("soft", func(t *testing.T) {
		backend := NewMemoryBackend()
		r := openTestRegistry(t, backend)
		require.NoError(t, r.SetKeyString("a", "1"))
		require.NoError(t, r.Flush(ctx))

		require.NoError(t, r.Reset(ctx, ResetSoft))
		assert.True(t, r.Empty())
		require.NoError(t, r.Flush(ctx))

		flat, ok, _ := backend.GetItem(ctx, DefaultStorageKey)
		assert.True(t, ok)
		assert.Equal(t, "", flat)
	})

	t.Run("hard", func(t *testing.T) {
		backend := NewMemoryBackend()
		r := openTestRegistry(t, backend)
		require.NoError(t, r.SetKeyString("a", "1"))
		require.NoError(t, r.Flush(ctx))
		require.NoError(t, r.SetKeyString("b", "2"))

		require.NoError(t, r.Reset(ctx, ResetHard))
		assert.True(t, r.Empty())
		assert.False(t, r.Pending())

		_, ok, _ := backend.GetItem(ctx, DefaultStorageKey)
		assert.False(t, ok)
	})
}

func TestOpenSkipsMalformedItems(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	flat := "a" + PairSeparator + "1" + ItemSeparator + "garbage" + ItemSeparator + PairSeparator + "nokey" + ItemSeparator + "b" + PairSeparator + "2"
	require.NoError(t, backend.SetItem(ctx, "custom", flat))

	r := openTestRegistry(t, backend, WithStorageKey("custom"))
	assert.Equal(t, []string{"a", "b"}, r.Keys())
}

func TestCloseFlushesAndRejectsWrites(t *testing.T) {
	ctx := context.Background()
	backend := &countingBackend{Backend: NewMemoryBackend()}
	r := openTestRegistry(t, backend, WithFlushDelay(time.Hour))

	require.NoError(t, r.SetKeyString("a", "1"))
	require.NoError(t, r.Close(ctx))
	assert.Equal(t, int32(1), backend.writes.Load())
	assert.ErrorIs(t, r.SetKeyString("b", "2"), ErrClosed)
}

func TestEncodeDecode(t *testing.T) {
	items := map[string]string{"b": "2", "a": "", "c": "x<y>{z}"}
	flat := Encode(items)
	assert.Equal(t, "a"+PairSeparator+ItemSeparator+"b"+PairSeparator+"2"+ItemSeparator+"c"+PairSeparator+"x<y>{z}", flat)

	decoded, malformed := Decode(flat)
	assert.Equal(t, items, decoded)
	assert.Empty(t, malformed)

	empty, malformed := Decode("")
	assert.Empty(t, empty)
	assert.Empty(t, malformed)
}
