package frontmatter

import (
	"strings"
	"testing"
)

func TestUpdatePreservesUnknownKeys(t *testing.T) {
	content := []byte(`---
id: old
title: Old Title
author: someone # keep me
tags: [a]
---
old body`)

	got, err := Update(content, map[string]any{
		"title": "New Title",
		"tags":  []string{"x", "y"},
	}, []byte("new body"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	fm, body, err := Parse(string(got))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if fm.Title != "New Title" {
		t.Errorf("title = %q, want %q", fm.Title, "New Title")
	}
	if fm.ID != "old" {
		t.Errorf("id = %q, want %q", fm.ID, "old")
	}
	if strings.Join(fm.Tags, ",") != "x,y" {
		t.Errorf("tags = %v", fm.Tags)
	}
	if !strings.Contains(string(got), "author: someone # keep me") {
		t.Errorf("unknown key or its comment was lost:\n%s", got)
	}
	if body != "new body" {
		t.Errorf("body = %q, want %q", body, "new body")
	}
}

func TestUpdateKeepsBodyWhenNil(t *testing.T) {
	content := []byte("---\ntitle: T\n---\nkeep this")
	got, err := Update(content, map[string]any{"title": "U"}, nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	_, body, err := Parse(string(got))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if body != "keep this" {
		t.Errorf("body = %q", body)
	}
}

func TestUpdateWithoutFrontmatter(t *testing.T) {
	got, err := Update([]byte("plain body"), map[string]any{"id": "n1", "title": "Created"}, nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	fm, body, err := Parse(string(got))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if fm == nil || fm.ID != "n1" || fm.Title != "Created" {
		t.Fatalf("frontmatter = %+v", fm)
	}
	if body != "plain body" {
		t.Errorf("body = %q", body)
	}
}
