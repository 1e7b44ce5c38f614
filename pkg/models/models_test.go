package models

import (
	"errors"
	"testing"
)

type fieldMap map[string]string

func (m fieldMap) Get(key string) string { return m[key] }

func TestNodeTypeValidation(t *testing.T) {
	tests := []struct {
		nodeType NodeType
		isValid  bool
	}{
		{NodeTypeNoteBox, true},
		{NodeTypeDropBar, true},
		{NodeTypeFolder, true},
		{NodeType("NoteBox"), false},
		{NodeType("invalid"), false},
		{NodeType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.nodeType), func(t *testing.T) {
			if tt.nodeType.IsValid() != tt.isValid {
				t.Errorf("Expected isValid %v for node type %q", tt.isValid, tt.nodeType)
			}
		})
	}
}

// Every registered tag must carry a complete policy.
func TestAllNodeTypesHaveConfig(t *testing.T) {
	if len(AllNodeTypes()) != len(DefaultNodeTypes) {
		t.Fatalf("AllNodeTypes has %d entries, DefaultNodeTypes has %d", len(AllNodeTypes()), len(DefaultNodeTypes))
	}
	for _, nt := range AllNodeTypes() {
		cfg, ok := nt.Config()
		if !ok {
			t.Fatalf("no config for %s", nt)
		}
		if len(cfg.Fields) == 0 {
			t.Errorf("%s declares no fields", nt)
		}
		if cfg.IsEmpty == nil {
			t.Errorf("%s has no empty predicate", nt)
		}
		for _, f := range cfg.Indexed {
			if !cfg.HasField(f) {
				t.Errorf("%s indexes undeclared field %q", nt, f)
			}
		}
	}
}

func TestParseNodeType(t *testing.T) {
	got, err := ParseNodeType(" NoteBox ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != NodeTypeNoteBox {
		t.Errorf("Expected %s, got %s", NodeTypeNoteBox, got)
	}

	_, err = ParseNodeType("sticky")
	if !errors.Is(err, ErrInvalidType) {
		t.Errorf("Expected ErrInvalidType, got %v", err)
	}
}

func TestEmptyPredicates(t *testing.T) {
	tests := []struct {
		name     string
		nodeType NodeType
		data     fieldMap
		empty    bool
	}{
		{"notebox both empty", NodeTypeNoteBox, fieldMap{}, true},
		{"notebox title only", NodeTypeNoteBox, fieldMap{FieldTitle: "t"}, false},
		{"notebox content only", NodeTypeNoteBox, fieldMap{FieldContent: "c"}, false},
		{"dropbar empty title", NodeTypeDropBar, fieldMap{FieldTitle: ""}, true},
		{"dropbar titled", NodeTypeDropBar, fieldMap{FieldTitle: "inbox"}, false},
		{"folder never empty", NodeTypeFolder, fieldMap{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _ := tt.nodeType.Config()
			if got := cfg.IsEmpty(tt.data); got != tt.empty {
				t.Errorf("IsEmpty = %v, want %v", got, tt.empty)
			}
		})
	}
}
