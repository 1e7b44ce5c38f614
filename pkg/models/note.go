package models

import (
	"errors"
	"fmt"
	"strings"
)

// NodeType represents the type of a board node
type NodeType string

const (
	// NodeTypeNoteBox is a free-standing note with a title and a body
	NodeTypeNoteBox NodeType = "notebox"

	// NodeTypeDropBar is a titled bar other nodes can be dropped into
	NodeTypeDropBar NodeType = "dropbar"

	// NodeTypeFolder groups nodes under a title
	NodeTypeFolder NodeType = "folder"
)

// Field names shared by the node types.
const (
	FieldTitle   = "title"
	FieldContent = "content"
)

// ErrInvalidType is returned when a string does not name a registered node type.
var ErrInvalidType = errors.New("models: invalid node type")

// AllNodeTypes returns every registered node type in display order.
func AllNodeTypes() []NodeType {
	return []NodeType{NodeTypeNoteBox, NodeTypeDropBar, NodeTypeFolder}
}

// IsValid reports whether t is registered in DefaultNodeTypes.
func (t NodeType) IsValid() bool {
	_, ok := DefaultNodeTypes[t]
	return ok
}

// Config returns the configuration for t and whether it exists.
func (t NodeType) Config() (TypeConfig, bool) {
	cfg, ok := DefaultNodeTypes[t]
	return cfg, ok
}

// String implements fmt.Stringer.
func (t NodeType) String() string {
	return string(t)
}

// ParseNodeType converts user input (e.g. "NoteBox", "dropbar") into a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}
