package format

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tplform/pkg/render"
)

// JSON indents rendered JSON documents.
type JSON struct {
	indent string
}

var _ render.Formatter = (*JSON)(nil)

// NewJSON returns a JSON formatter using two-space indentation.
func NewJSON() *JSON {
	return &JSON{indent: "  "}
}

// Format implements render.Formatter.
func (j *JSON) Format(ctx context.Context, markup string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(markup)), "", j.indent); err != nil {
		return "", fmt.Errorf("format: indent json: %w", err)
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// YAML re-encodes rendered YAML through yaml.v3 nodes, which keeps comments
// and key order while normalising indentation.
type YAML struct {
	indent int
}

var _ render.Formatter = (*YAML)(nil)

// NewYAML returns a YAML formatter using two-space indentation.
func NewYAML() *YAML {
	return &YAML{indent: 2}
}

// Format implements render.Formatter. Multi-document streams are supported.
func (y *YAML) Format(ctx context.Context, markup string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dec := yaml.NewDecoder(strings.NewReader(markup))
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(y.indent)

	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("format: decode yaml: %w", err)
		}
		if err := enc.Encode(&node); err != nil {
			return "", fmt.Errorf("format: encode yaml: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("format: encode yaml: %w", err)
	}
	return buf.String(), nil
}

// Text normalises line endings and trailing whitespace.
type Text struct{}

var _ render.Formatter = Text{}

// NewText returns the plain text formatter.
func NewText() Text {
	return Text{}
}

// Format implements render.Formatter.
func (Text) Format(ctx context.Context, markup string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := strings.ReplaceAll(markup, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n", nil
}
