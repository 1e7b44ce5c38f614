package frontmatter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var frontmatterPattern = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---(?:\r?\n|$)(.*)`)

// Frontmatter represents the structured metadata at the beginning of an
// exported note
type Frontmatter struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Type     string   `yaml:"type,omitempty"`
	Tags     []string `yaml:"tags,flow"`
	Created  string   `yaml:"created"`
	Modified string   `yaml:"modified"`
}

// Parse extracts frontmatter from content and returns the parsed data and body
func Parse(content string) (*Frontmatter, string, error) {
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) != 3 {
		// No frontmatter found
		return nil, content, nil
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(matches[1]), &fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	return &fm, matches[2], nil
}

// Build creates the YAML frontmatter string from a Frontmatter struct
func Build(fm *Frontmatter) string {
	var sb strings.Builder

	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "id: %s\n", scalar(fm.ID))
	fmt.Fprintf(&sb, "title: %s\n", scalar(fm.Title))
	if fm.Type != "" {
		fmt.Fprintf(&sb, "type: %s\n", scalar(fm.Type))
	}
	fmt.Fprintf(&sb, "tags: %s\n", formatYAMLArray(fm.Tags))
	fmt.Fprintf(&sb, "created: %s\n", fm.Created)
	fmt.Fprintf(&sb, "modified: %s\n", fm.Modified)
	sb.WriteString("---")

	return sb.String()
}

// BuildContent combines frontmatter and body content into a complete document
func BuildContent(fm *Frontmatter, bodyContent string) string {
	frontmatterStr := Build(fm)

	// Ensure proper spacing between frontmatter and body
	if !strings.HasPrefix(bodyContent, "\n") {
		return frontmatterStr + "\n\n" + bodyContent
	}
	return frontmatterStr + "\n" + bodyContent
}

// FormatTimestamp formats a time.Time into the standard frontmatter timestamp format
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// ParseTimestamp parses a frontmatter timestamp string into time.Time
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04:05", s)
}

// scalar quotes s when it would not survive as a plain YAML scalar
func scalar(s string) string {
	if s == "" || needsQuoting(s) || strings.TrimSpace(s) != s {
		return strconv.Quote(s)
	}
	return s
}

// formatYAMLArray formats a string slice as a YAML flow-style array
func formatYAMLArray(items []string) string {
	if len(items) == 0 {
		return "[]"
	}

	quotedItems := make([]string, len(items))
	for i, item := range items {
		if needsQuoting(item) {
			quotedItems[i] = strconv.Quote(item)
		} else {
			quotedItems[i] = item
		}
	}

	return fmt.Sprintf("[%s]", strings.Join(quotedItems, ", "))
}

// needsQuoting checks if a string needs to be quoted in YAML
func needsQuoting(s string) bool {
	if strings.ContainsAny(s, ",:[]{}\"'#&*!|>%@`\n\t\\") {
		return true
	}
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no", "on", "off", "null", "~":
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return strings.HasPrefix(s, "-") || strings.HasPrefix(s, "?")
}

// MergeTags combines multiple tag sources and removes duplicates
func MergeTags(sources ...[]string) []string {
	seen := make(map[string]bool)
	result := []string{}

	for _, tags := range sources {
		for _, tag := range tags {
			if tag != "" && !seen[tag] {
				seen[tag] = true
				result = append(result, tag)
			}
		}
	}

	return result
}
