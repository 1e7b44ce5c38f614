package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattsolo1/grove-board/pkg/frontmatter"
	"github.com/mattsolo1/grove-board/pkg/ident"
	"github.com/mattsolo1/grove-board/pkg/models"
	"github.com/mattsolo1/grove-board/pkg/nodes"
)

// now is replaced in tests.
var now = time.Now

// ImportMarkdown turns a markdown document into a node under parent.
//
// The frontmatter type selects the node type (notebox when absent). The title
// comes from the frontmatter or the first "# " heading. When the frontmatter
// id names a live node, that node is updated in place and parent is ignored;
// an unused id is kept.
func (s *Service) ImportMarkdown(content string, parent nodes.Ref) (*nodes.Node, error) {
	fm, body, err := frontmatter.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("import markdown: %w", err)
	}
	if fm == nil {
		fm = &frontmatter.Frontmatter{}
	}

	t := models.NodeTypeNoteBox
	if fm.Type != "" {
		if t, err = models.ParseNodeType(fm.Type); err != nil {
			return nil, fmt.Errorf("import markdown: %w", err)
		}
	}

	title := fm.Title
	if title == "" {
		title = extractTitle(body)
	}
	data := map[string]string{
		models.FieldTitle:   title,
		models.FieldContent: strings.TrimLeft(body, "\n"),
	}

	if fm.ID != "" && nodes.IsNodeID(fm.ID) {
		if existing := s.store.GetNodeByID(nodes.ID(fm.ID)); existing != nil {
			if existing.Type() != t {
				return nil, fmt.Errorf("import %s: is a %s, not a %s: %w", fm.ID, existing.Type(), t, models.ErrInvalidType)
			}
			// An update that empties the node deletes it; callers see IsDeleted.
			if _, err := s.Update(existing, data); err != nil {
				return nil, err
			}
			return existing, nil
		}
	}

	var p *nodes.Node
	if parent != nil {
		if p, err = s.container(parent); err != nil {
			return nil, err
		}
	}

	var n *nodes.Node
	if fm.ID != "" && nodes.IsNodeID(fm.ID) {
		n, err = s.store.Restore(nodes.ID(fm.ID), t, data)
		if errors.Is(err, nodes.ErrDuplicateID) {
			// The id belonged to a deleted node; ids are never reused.
			n, err = s.store.CreateNode(t, data)
		}
	} else {
		n, err = s.store.CreateNode(t, data)
	}
	if err != nil {
		return nil, fmt.Errorf("import markdown: %w", err)
	}
	if p != nil {
		if err := p.AddChild(n); err != nil {
			_ = s.store.Delete(n)
			return nil, err
		}
	}
	return n, nil
}

// ExportMarkdown renders a node as markdown with frontmatter. Containers list
// their children's titles as the body.
func (s *Service) ExportMarkdown(ref nodes.Ref) (string, error) {
	n, err := s.store.Resolve(ref)
	if err != nil {
		return "", err
	}
	return frontmatter.BuildContent(s.frontmatterFor(n), markdownBody(n)), nil
}

// ExportMarkdownInto rewrites an existing document with the node's current
// state. Frontmatter keys the board does not manage are kept.
func (s *Service) ExportMarkdownInto(ref nodes.Ref, existing []byte) ([]byte, error) {
	n, err := s.store.Resolve(ref)
	if err != nil {
		return nil, err
	}
	fm := s.frontmatterFor(n)
	updates := map[string]any{
		"id":       fm.ID,
		"title":    fm.Title,
		"type":     fm.Type,
		"modified": fm.Modified,
	}
	return frontmatter.Update(existing, updates, []byte(markdownBody(n)))
}

func (s *Service) frontmatterFor(n *nodes.Node) *frontmatter.Frontmatter {
	modified := frontmatter.FormatTimestamp(now())
	created := modified
	if t, ok := ident.Time(string(n.ID())); ok {
		created = frontmatter.FormatTimestamp(t)
	}
	var tags []string
	for _, p := range s.store.ParentsOf(n) {
		tags = append(tags, slugify(p.Data().Get(models.FieldTitle)))
	}
	return &frontmatter.Frontmatter{
		ID:       string(n.ID()),
		Title:    n.Data().Get(models.FieldTitle),
		Type:     string(n.Type()),
		Tags:     frontmatter.MergeTags(tags),
		Created:  created,
		Modified: modified,
	}
}

func markdownBody(n *nodes.Node) string {
	if content, ok := n.Data().Lookup(models.FieldContent); ok {
		return content
	}
	var sb strings.Builder
	for _, c := range n.Children() {
		title := c.Data().Get(models.FieldTitle)
		if title == "" {
			title = string(c.ID())
		}
		fmt.Fprintf(&sb, "- %s\n", title)
	}
	return sb.String()
}

// Filename returns a file name for the exported node.
func Filename(n *nodes.Node) string {
	name := slugify(n.Data().Get(models.FieldTitle))
	if name == "" {
		name = strings.NewReplacer(":", "-", ".", "-").Replace(string(n.ID()))
	}
	return name + ".md"
}

// extractTitle gets the title from markdown content
func extractTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// slugify turns a title into a lowercase, hyphenated name without characters
// that are invalid in file names.
func slugify(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "-")

	invalidChars := []string{"/", "\\", ":", "*", "?", `"`, "<", ">", "|"}
	for _, char := range invalidChars {
		s = strings.ReplaceAll(s, char, "")
	}

	return strings.ToLower(s)
}
