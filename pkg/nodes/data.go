package nodes

import (
	"maps"
	"slices"

	"github.com/mattsolo1/grove-board/pkg/models"
)

// Data is an immutable snapshot of a node's payload. Updates produce a new
// value; nothing outside this package can change an existing one.
type Data struct {
	m map[string]string
}

// newData keeps only the fields cfg declares.
func newData(cfg models.TypeConfig, in map[string]string) Data {
	m := make(map[string]string, len(cfg.Fields))
	for k, v := range in {
		if cfg.HasField(k) {
			m[k] = v
		}
	}
	return Data{m: m}
}

// Get returns the value of key, or "" when unset.
func (d Data) Get(key string) string {
	return d.m[key]
}

// Lookup returns the value of key and whether it is set.
func (d Data) Lookup(key string) (string, bool) {
	v, ok := d.m[key]
	return v, ok
}

// Len returns the number of set fields.
func (d Data) Len() int {
	return len(d.m)
}

// Keys returns the set fields in sorted order.
func (d Data) Keys() []string {
	return slices.Sorted(maps.Keys(d.m))
}

// Map returns a copy of the payload.
func (d Data) Map() map[string]string {
	return maps.Clone(d.m)
}

// Equal reports whether both snapshots hold the same fields and values.
func (d Data) Equal(other Data) bool {
	return maps.Equal(d.m, other.m)
}

// merge returns a new snapshot with partial shallow-merged in, and the keys whose
// value changed in declaration order. Undeclared keys are dropped.
func (d Data) merge(cfg models.TypeConfig, partial map[string]string) (Data, []string) {
	next := maps.Clone(d.m)
	if next == nil {
		next = make(map[string]string, len(partial))
	}
	var changed []string
	for _, field := range cfg.Fields {
		v, ok := partial[field]
		if !ok {
			continue
		}
		if old, had := next[field]; had && old == v {
			continue
		}
		next[field] = v
		changed = append(changed, field)
	}
	return Data{m: next}, changed
}
