package form

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadValues decodes a flat YAML or JSON mapping of prefilled placeholder
// values. Scalars are converted to their string form; nested mappings and
// sequences are rejected since placeholders only carry plain strings.
func LoadValues(r io.Reader) (map[string]string, error) {
	if r == nil {
		return nil, errors.New("form: values reader is nil")
	}

	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("form: decode values: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("form: values must be a mapping, got %s", nodeKind(root))
	}

	out := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		name := strings.TrimSpace(key.Value)
		if name == "" {
			continue
		}
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("form: value for %q must be a scalar, got %s", name, nodeKind(value))
		}
		if value.ShortTag() == "!!null" {
			out[name] = ""
			continue
		}
		out[name] = value.Value
	}
	return out, nil
}

// ParseAssignment splits a `name=value` pair as accepted by the CLI. The
// value may be empty and may itself contain '='.
func ParseAssignment(raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("form: invalid assignment %q, want name=value", raw)
	}
	return name, value, nil
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

func sortStrings(values []string) {
	if len(values) > 1 {
		sort.Strings(values)
	}
}
