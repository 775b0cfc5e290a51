package document

import (
	"errors"
	"path"
	"strings"
	"unicode/utf8"
)

// Source identifies where a template originated so loaders can operate on
// files, fs.FS entries, URLs or readers without leaking implementation
// details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindFS     SourceKind = "fs"
	SourceKindURL    SourceKind = "url"
	SourceKindReader SourceKind = "reader"
)

// ErrNotText is returned for payloads that are not valid UTF-8 text.
var ErrNotText = errors.New("document: content is not valid UTF-8 text")

// Document wraps the raw template text and its origin. Any text is a valid
// template, including the empty string.
type Document struct {
	source  Source
	content string
}

// NewDocument constructs a Document, rejecting binary payloads.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("document: source is required")
	}
	if !utf8.Valid(raw) {
		return Document{}, ErrNotText
	}
	content := strings.TrimPrefix(string(raw), "\uFEFF")
	return Document{source: src, content: content}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Content returns the template text.
func (d Document) Content() string {
	return d.content
}

// Name returns the base name of the source location, used to pick a dialect
// and to label the session.
func (d Document) Name() string {
	if d.source == nil {
		return ""
	}
	location := d.source.Location()
	if d.source.Kind() == SourceKindURL {
		if idx := strings.IndexAny(location, "?#"); idx >= 0 {
			location = location[:idx]
		}
	}
	location = strings.ReplaceAll(location, "\\", "/")
	name := path.Base(location)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
