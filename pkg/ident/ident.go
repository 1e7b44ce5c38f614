// Package ident generates identifiers for board nodes.
//
// An identifier looks like "nd:<ms>.<mono>.<rand>" where every part is base36:
// the wall clock in milliseconds, a monotonic nanosecond sample taken since the
// generator was created, and a random 32-bit integer. The "nd:" prefix is what
// makes a string a valid identifier.
package ident

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Prefix tags every identifier produced by this package.
const Prefix = "nd:"

const separator = "."

// Generator produces identifiers. The zero value is not usable; use New.
type Generator struct {
	mu    sync.Mutex
	now   func() time.Time
	start time.Time
	rand  func() uint32
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the wall clock. Useful for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRand replaces the random source. Useful for tests.
func WithRand(r func() uint32) Option {
	return func(g *Generator) { g.rand = r }
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		now:  time.Now,
		rand: rand.Uint32,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.start = g.now()
	return g
}

// Next returns a new identifier. It never fails and never blocks on I/O.
func (g *Generator) Next() string {
	g.mu.Lock()
	now := g.now()
	r := g.rand()
	g.mu.Unlock()

	var sb strings.Builder
	sb.Grow(32)
	sb.WriteString(Prefix)
	sb.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	sb.WriteString(separator)
	// now.Sub uses the monotonic reading when both times carry one.
	sb.WriteString(strconv.FormatInt(int64(now.Sub(g.start)), 36))
	sb.WriteString(separator)
	sb.WriteString(strconv.FormatUint(uint64(r), 36))
	return sb.String()
}

// NextUnique returns an identifier for which exists reports false. The check is a
// safety net; collisions are not expected in practice.
func (g *Generator) NextUnique(exists func(string) bool) string {
	for {
		id := g.Next()
		if exists == nil || !exists(id) {
			return id
		}
	}
}

// IsValid reports whether s carries the identifier prefix.
func IsValid(s string) bool {
	return len(s) > len(Prefix) && strings.HasPrefix(s, Prefix)
}

// Time returns the wall-clock time encoded in id.
func Time(id string) (time.Time, bool) {
	if !IsValid(id) {
		return time.Time{}, false
	}
	ms, _, _ := strings.Cut(strings.TrimPrefix(id, Prefix), separator)
	n, err := strconv.ParseInt(ms, 36, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(n), true
}

var defaultGenerator = New()

// Next returns an identifier from the package-level generator.
func Next() string {
	return defaultGenerator.Next()
}
