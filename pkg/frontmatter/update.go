package frontmatter

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Update sets the given fields in the frontmatter of content, keeping every
// other key and its formatting. Content without frontmatter gets a new block.
// The body is replaced by body unless body is nil.
func Update(content []byte, updates map[string]any, body []byte) ([]byte, error) {
	matches := frontmatterPattern.FindSubmatch(content)
	if matches == nil {
		if body == nil {
			body = content
		}
		return newBlock(updates, body)
	}
	if body == nil {
		body = matches[2]
	}

	updated, err := updateNode(matches[1], updates)
	if err != nil {
		return nil, err
	}

	var result bytes.Buffer
	result.WriteString("---\n")
	result.WriteString(strings.TrimSpace(string(updated)))
	result.WriteString("\n---\n")
	result.Write(body)
	return result.Bytes(), nil
}

func newBlock(updates map[string]any, body []byte) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range slices.Sorted(maps.Keys(updates)) {
		setValue(doc, key, updates[key])
	}
	yamlBytes, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling new frontmatter: %w", err)
	}

	var result bytes.Buffer
	result.WriteString("---\n")
	result.Write(yamlBytes)
	result.WriteString("---\n")
	result.Write(body)
	return result.Bytes(), nil
}

// updateNode updates YAML using the Node API to preserve formatting.
func updateNode(yamlData []byte, updates map[string]any) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(yamlData, &root); err != nil {
		return nil, fmt.Errorf("unmarshaling YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("no YAML document found")
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("frontmatter is not a mapping")
	}

	for _, key := range slices.Sorted(maps.Keys(updates)) {
		setValue(doc, key, updates[key])
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// setValue replaces or appends key in a mapping node.
func setValue(node *yaml.Node, key string, value any) {
	valueNode := toNode(value)
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value == key {
			// Keep comments attached to the old value.
			valueNode.HeadComment = node.Content[i+1].HeadComment
			valueNode.LineComment = node.Content[i+1].LineComment
			node.Content[i+1] = valueNode
			return
		}
	}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key, Tag: "!!str"},
		valueNode,
	)
}

func toNode(value any) *yaml.Node {
	if items, ok := value.([]string); ok {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, item := range items {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: item, Tag: "!!str"})
		}
		return seq
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(value), Tag: resolveYAMLTag(value)}
}

// resolveYAMLTag determines the appropriate YAML tag for a value.
func resolveYAMLTag(value any) string {
	switch value.(type) {
	case int, int64, int32:
		return "!!int"
	case float64, float32:
		return "!!float"
	case bool:
		return "!!bool"
	default:
		return "!!str"
	}
}
