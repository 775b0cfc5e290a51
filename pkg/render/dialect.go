package render

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Dialect names the markup language of rendered output. It selects the
// display formatter and the export MIME type.
type Dialect string

const (
	DialectHTML Dialect = "html"
	DialectJSON Dialect = "json"
	DialectYAML Dialect = "yaml"
	DialectText Dialect = "text"
)

// ParseDialect normalises user input such as "HTML" or "yml".
func ParseDialect(raw string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "html", "htm":
		return DialectHTML, nil
	case "json":
		return DialectJSON, nil
	case "yaml", "yml":
		return DialectYAML, nil
	case "text", "txt", "plain":
		return DialectText, nil
	default:
		return "", fmt.Errorf("render: unknown dialect %q", raw)
	}
}

// DialectFromFilename guesses the dialect from a file extension, defaulting
// to text.
func DialectFromFilename(name string) Dialect {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return DialectText
	}
	dialect, err := ParseDialect(ext)
	if err != nil {
		return DialectText
	}
	return dialect
}

// ContentType reports the MIME type used when exporting output of this
// dialect.
func (d Dialect) ContentType() string {
	switch d {
	case DialectHTML:
		return "text/html; charset=utf-8"
	case DialectJSON:
		return "application/json"
	case DialectYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}
