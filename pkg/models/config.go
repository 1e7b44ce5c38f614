package models

import "slices"

// Fields is the read side of a node's data payload.
type Fields interface {
	Get(key string) string
}

// TypeConfig defines the data layout and policies of a node type
type TypeConfig struct {
	// Fields lists the data keys the type stores. Anything else is dropped.
	Fields []string

	// Indexed lists, in order, the fields fed to the search index.
	Indexed []string

	// Container is true for types whose children are part of their search document.
	Container bool

	// IsEmpty reports whether the data is vacuous and the node should be removed.
	IsEmpty func(Fields) bool
}

// HasField reports whether key is declared for the type.
func (c TypeConfig) HasField(key string) bool {
	return slices.Contains(c.Fields, key)
}

// DefaultNodeTypes maps every node type to its configuration
var DefaultNodeTypes = map[NodeType]TypeConfig{
	NodeTypeNoteBox: {
		Fields:  []string{FieldTitle, FieldContent},
		Indexed: []string{FieldTitle, FieldContent},
		IsEmpty: func(f Fields) bool {
			return f.Get(FieldTitle) == "" && f.Get(FieldContent) == ""
		},
	},
	NodeTypeDropBar: {
		Fields:    []string{FieldTitle},
		Indexed:   []string{FieldTitle},
		Container: true,
		IsEmpty: func(f Fields) bool {
			return f.Get(FieldTitle) == ""
		},
	},
	NodeTypeFolder: {
		Fields:    []string{FieldTitle},
		Indexed:   []string{FieldTitle},
		Container: true,
		// Folders are structural; they go away only when deleted explicitly.
		IsEmpty: func(Fields) bool { return false },
	},
}
