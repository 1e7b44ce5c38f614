package registry

import (
	"maps"
	"slices"
	"strings"
)

// Reserved separators of the flat format. A stored string is
//
//	key PairSeparator value ItemSeparator key PairSeparator value ...
//
// Both separators are unbordered and share no characters, so as long as no key
// or value contains one, no separator can appear across an entry boundary.
const (
	PairSeparator = "<␟>"
	ItemSeparator = "{␞}"
)

func containsSeparator(s string) bool {
	return strings.Contains(s, PairSeparator) || strings.Contains(s, ItemSeparator)
}

// Encode serializes items into the flat format with keys in sorted order.
func Encode(items map[string]string) string {
	var sb strings.Builder
	for i, k := range slices.Sorted(maps.Keys(items)) {
		if i > 0 {
			sb.WriteString(ItemSeparator)
		}
		sb.WriteString(k)
		sb.WriteString(PairSeparator)
		sb.WriteString(items[k])
	}
	return sb.String()
}

// Decode parses a flat string. Items without a pair separator or with an empty
// key are returned in malformed and otherwise ignored.
func Decode(flat string) (items map[string]string, malformed []string) {
	items = make(map[string]string)
	if flat == "" {
		return items, nil
	}
	for _, item := range strings.Split(flat, ItemSeparator) {
		k, v, ok := strings.Cut(item, PairSeparator)
		if !ok || k == "" {
			malformed = append(malformed, item)
			continue
		}
		items[k] = v
	}
	return items, malformed
}
