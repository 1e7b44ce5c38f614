package nodes

import (
	"errors"

	"github.com/mattsolo1/grove-board/pkg/models"
)

var (
	// ErrInvalidType is returned when creating a node of an unregistered type.
	ErrInvalidType = models.ErrInvalidType

	// ErrNotFound is returned when an id or node does not resolve to a live node.
	ErrNotFound = errors.New("nodes: node not found")

	// ErrOutOfRange is returned when a child index is out of bounds.
	ErrOutOfRange = errors.New("nodes: child index out of range")

	// ErrInvalidID is returned when restoring a node with a malformed identifier.
	ErrInvalidID = errors.New("nodes: invalid node id")

	// ErrDuplicateID is returned when restoring an id that is live or was retired.
	ErrDuplicateID = errors.New("nodes: node id already used")

	// ErrCycle is returned when adding a child would make a node its own ancestor.
	ErrCycle = errors.New("nodes: child would create a cycle")
)
