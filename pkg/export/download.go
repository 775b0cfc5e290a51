package export

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// File writes content to DownloadFilename inside a directory. The file is
// written to a temporary sibling first and renamed into place.
type File struct {
	dir  string
	perm os.FileMode
}

// NewFile returns an exporter writing dir/output.html.
func NewFile(dir string) *File {
	return &File{dir: dir, perm: 0o644}
}

// Path returns the destination file path.
func (f *File) Path() string {
	return filepath.Join(f.dir, DownloadFilename)
}

// Export implements Exporter.
func (f *File) Export(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return wrap(DownloadFilename, err)
	}
	if f == nil || f.dir == "" {
		return wrap(DownloadFilename, errors.New("output directory is required"))
	}

	tmp, err := os.CreateTemp(f.dir, "."+DownloadFilename+".*")
	if err != nil {
		return wrap(DownloadFilename, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return wrap(DownloadFilename, err)
	}
	if err := tmp.Close(); err != nil {
		return wrap(DownloadFilename, err)
	}
	if err := os.Chmod(tmpName, f.perm); err != nil {
		return wrap(DownloadFilename, err)
	}
	return wrap(DownloadFilename, os.Rename(tmpName, f.Path()))
}

// ContentFunc supplies the content served by a download handler.
type ContentFunc func(ctx context.Context) (string, error)

// WriteAttachment writes content as an output.html attachment response.
func WriteAttachment(w http.ResponseWriter, content string) {
	header := w.Header()
	header.Set("Content-Type", mime.FormatMediaType(DownloadContentType, map[string]string{"charset": "utf-8"}))
	header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": DownloadFilename}))
	header.Set("Content-Length", strconv.Itoa(len(content)))
	header.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

// DownloadHandler serves the content returned by fn as an attachment. fn
// errors that match notFound produce 404; anything else is a 500.
func DownloadHandler(fn ContentFunc, notFound ...error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, err := fn(r.Context())
		if err != nil {
			for _, target := range notFound {
				if errors.Is(err, target) {
					http.Error(w, err.Error(), http.StatusNotFound)
					return
				}
			}
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		WriteAttachment(w, content)
	})
}
