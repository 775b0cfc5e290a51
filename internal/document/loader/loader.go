package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-tplform/pkg/document"
)

// Loader implements document.Loader by delegating to file, fs.FS, HTTP or
// reader strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	maxBytes  int64
}

// Ensure the implementation satisfies the public interface.
var _ document.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options document.LoaderOptions) document.Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	maxBytes := options.MaxBytes
	if maxBytes <= 0 {
		maxBytes = document.DefaultMaxBytes
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		maxBytes:  maxBytes,
	}
}

// Load fetches a template from the provided source and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src document.Source) (document.Document, error) {
	if src == nil {
		return document.Document{}, errors.New("document loader: source is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case document.SourceKindFile:
		data, err = loadFile(ctx, src.Location(), l.maxBytes)
	case document.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location(), l.maxBytes)
	case document.SourceKindURL:
		if !l.allowHTTP {
			return document.Document{}, errors.New("document loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout, l.maxBytes)
	case document.SourceKindReader:
		rs, ok := src.(document.ReaderSource)
		if !ok {
			return document.Document{}, fmt.Errorf("document loader: reader source %T not supported", src)
		}
		data, err = loadReader(ctx, rs.Reader, l.maxBytes)
	default:
		err = fmt.Errorf("document loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return document.Document{}, err
	}

	return document.NewDocument(src, data)
}
