// Package tree builds read-only snapshots of a board for display and export.
package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattsolo1/grove-board/pkg/models"
	"github.com/mattsolo1/grove-board/pkg/nodes"
)

// Item is a snapshot of one node and, recursively, its children.
type Item struct {
	ID       string            `yaml:"id"`
	Type     models.NodeType   `yaml:"type"`
	Title    string            `yaml:"title,omitempty"`
	Data     map[string]string `yaml:"data,omitempty"`
	Children []*Item           `yaml:"children,omitempty"`

	// Shared is set on the second and later occurrences of a node reachable
	// through several parents. Their children are not repeated.
	Shared bool `yaml:"shared,omitempty"`
}

// Build snapshots the tree under root. A nil root yields nil.
func Build(root *nodes.Node) *Item {
	if root == nil {
		return nil
	}
	return build(root, make(map[nodes.ID]bool))
}

func build(n *nodes.Node, seen map[nodes.ID]bool) *Item {
	data := n.Data().Map()
	item := &Item{
		ID:    string(n.ID()),
		Type:  n.Type(),
		Title: data[models.FieldTitle],
	}
	delete(data, models.FieldTitle)
	if len(data) > 0 {
		item.Data = data
	}
	if seen[n.ID()] {
		item.Shared = true
		return item
	}
	seen[n.ID()] = true
	for _, c := range n.Children() {
		item.Children = append(item.Children, build(c, seen))
	}
	return item
}

// Count returns the number of items in the snapshot, shared ones included.
func (i *Item) Count() int {
	if i == nil {
		return 0
	}
	total := 1
	for _, c := range i.Children {
		total += c.Count()
	}
	return total
}

// Render writes an indented outline of the snapshot.
func (i *Item) Render(w io.Writer) error {
	if i == nil {
		return nil
	}
	return i.render(w, 0)
}

func (i *Item) render(w io.Writer, depth int) error {
	title := i.Title
	if title == "" {
		title = "(untitled)"
	}
	line := fmt.Sprintf("%s- %s [%s %s]", strings.Repeat("  ", depth), title, i.Type, i.ID)
	if i.Shared {
		line += " (shared)"
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, c := range i.Children {
		if err := c.render(w, depth+1); err != nil {
			return err
		}
	}
	return nil
}
