package export

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	// DownloadFilename is the fixed name of downloaded output.
	DownloadFilename = "output.html"
	// DownloadContentType is the MIME type announced for downloads.
	DownloadContentType = "text/html"
)

// Exporter delivers content somewhere. Implementations must write content
// verbatim.
type Exporter interface {
	Export(ctx context.Context, content string) error
}

// ExporterFunc adapts a function into an Exporter.
type ExporterFunc func(ctx context.Context, content string) error

// Export implements Exporter.
func (fn ExporterFunc) Export(ctx context.Context, content string) error {
	return fn(ctx, content)
}

// Error reports a failed export. State owned by the caller is never modified
// by a failed export.
type Error struct {
	Target string
	Err    error
}

func (e *Error) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("export: %v", e.Err)
	}
	return fmt.Sprintf("export: %s: %v", e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(target string, err error) error {
	if err == nil {
		return nil
	}
	var exportErr *Error
	if errors.As(err, &exportErr) {
		return err
	}
	return &Error{Target: target, Err: err}
}

// Writer copies content to an io.Writer, for example stdout.
type Writer struct {
	w io.Writer
}

// NewWriter returns an exporter writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Export implements Exporter.
func (x *Writer) Export(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return wrap("writer", err)
	}
	if x == nil || x.w == nil {
		return wrap("writer", errors.New("writer is nil"))
	}
	_, err := io.WriteString(x.w, content)
	return wrap("writer", err)
}

// Multi runs every exporter in order and joins their failures. A failing
// exporter does not stop the ones after it.
func Multi(exporters ...Exporter) Exporter {
	return ExporterFunc(func(ctx context.Context, content string) error {
		var errs []error
		for _, exp := range exporters {
			if exp == nil {
				continue
			}
			if err := exp.Export(ctx, content); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
