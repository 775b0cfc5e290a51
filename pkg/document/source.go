package document

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
)

// fileSource identifies on-disk templates.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// fsSource references a path within an fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// urlSource references an HTTP/HTTPS endpoint.
type urlSource struct {
	raw string
}

func (s urlSource) Location() string {
	return s.raw
}

func (s urlSource) Kind() SourceKind {
	return SourceKindURL
}

// SourceFromURL parses the supplied URL string and returns a Source. It
// returns an error for empty or non-absolute URLs.
func SourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("document: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("document: invalid URL %q: %w", raw, err)
	}
	return urlSource{raw: raw}, nil
}

// ReaderSource carries an io.Reader, for stdin or uploads already held in
// memory.
type ReaderSource struct {
	name   string
	Reader io.Reader
}

func (s ReaderSource) Location() string {
	return s.name
}

func (s ReaderSource) Kind() SourceKind {
	return SourceKindReader
}

// SourceFromReader wraps r. name labels the document (for example
// "upload.html" or "stdin").
func SourceFromReader(name string, r io.Reader) Source {
	return ReaderSource{name: name, Reader: r}
}

// ParseSource maps CLI style input onto a Source: "-" reads stdin, http(s)
// URLs use the HTTP loader and anything else is a file path.
func ParseSource(raw string, stdin io.Reader) (Source, error) {
	location := strings.TrimSpace(raw)
	switch {
	case location == "":
		return nil, fmt.Errorf("document: template source is required")
	case location == "-":
		return SourceFromReader("stdin", stdin), nil
	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		return SourceFromURL(location)
	default:
		return SourceFromFile(location), nil
	}
}
