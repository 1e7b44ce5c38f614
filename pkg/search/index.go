// Package search maintains a full-text index over reference ids.
//
// An entry is an ordered list of text fields; earlier fields weigh more, so
// callers put the title first. Entries are replaced wholesale on every
// SetReference.
package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("search: unknown backend")

// Index is a change-tracking full-text index.
type Index interface {
	// SetReference (re)indexes id with the given ordered fields.
	SetReference(id string, fields ...string) error
	// DeleteReference removes id. Removing an absent id is not an error.
	DeleteReference(id string) error
	// Search returns every reference matching all words of text. The last
	// word also matches as a prefix.
	Search(text string) (*Query, error)
	// Len returns the number of indexed references.
	Len() int
	Close() error
}

// Config selects and configures an Index.
type Config struct {
	Backend string
	// Path is the database file for the sqlite backend.
	Path   string
	Logger logrus.FieldLogger
}

// Open creates the index described by cfg. An empty backend means memory.
func Open(cfg Config) (Index, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return NewMemoryIndex(), nil
	case BackendSQLite:
		if cfg.Path == "" {
			return nil, errors.New("search: sqlite backend requires a path")
		}
		return NewSQLiteIndex(cfg.Path, cfg.Logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// fieldWeight is the weight of the i-th field of an entry.
func fieldWeight(i int) float64 {
	return 1 / float64(i+1)
}
