package registry

import "errors"

var (
	// ErrStore is returned for entries that cannot be stored: empty keys,
	// values that do not coerce to a string, or text containing a separator.
	ErrStore = errors.New("registry: invalid entry")

	// ErrQuotaExceeded marks a backend write that failed for lack of space.
	ErrQuotaExceeded = errors.New("registry: storage quota exceeded")

	// ErrClosed is returned by writes after Close.
	ErrClosed = errors.New("registry: closed")
)
