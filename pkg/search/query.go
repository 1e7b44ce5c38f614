package search

import (
	"cmp"
	"maps"
	"slices"
)

// Query is the result of a search: matched reference ids and their relevance.
type Query struct {
	Text   string
	Scores map[string]float64
}

func newQuery(text string) *Query {
	return &Query{Text: text, Scores: make(map[string]float64)}
}

// IDs returns the matched ids, best match first. Equal scores are ordered by id.
func (q *Query) IDs() []string {
	ids := slices.Collect(maps.Keys(q.Scores))
	slices.SortFunc(ids, func(a, b string) int {
		if c := cmp.Compare(q.Scores[b], q.Scores[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return ids
}

// Len returns the number of matches.
func (q *Query) Len() int { return len(q.Scores) }

// Has reports whether id matched.
func (q *Query) Has(id string) bool {
	_, ok := q.Scores[id]
	return ok
}

// Each calls fn for every match in IDs order.
func (q *Query) Each(fn func(id string, score float64)) {
	for _, id := range q.IDs() {
		fn(id, q.Scores[id])
	}
}

// MapResults materializes the matches in IDs order.
func MapResults[T any](q *Query, fn func(id string) T) []T {
	ids := q.IDs()
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, fn(id))
	}
	return out
}
