package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-tplform/pkg/document"
	"github.com/goliatone/go-tplform/pkg/session"
	"github.com/goliatone/go-tplform/pkg/watch"
)

type reloadRecorder struct {
	calls chan string
}

func (r *reloadRecorder) Load(_ context.Context, src document.Source) (session.Session, error) {
	data, err := os.ReadFile(src.Location())
	if err != nil {
		return session.Session{}, err
	}
	s := session.New().UploadNamed(filepath.Base(src.Location()), string(data))
	r.calls <- s.Template()
	return s, nil
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "letter.html")
	if err := os.WriteFile(path, []byte("v1 {{a}}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec := &reloadRecorder{calls: make(chan string, 4)}
	w, err := watch.New(path, rec, watch.WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = w.Run(ctx) }()

	if err := os.WriteFile(path, []byte("v2 {{b}}"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case got := <-rec.calls:
		if got != "v2 {{b}}" {
			t.Fatalf("unexpected reloaded template %q", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "letter.html")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec := &reloadRecorder{calls: make(chan string, 4)}
	w, err := watch.New(path, rec, watch.WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "other.html"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write other: %v", err)
	}

	select {
	case got := <-rec.calls:
		t.Fatalf("unexpected reload %q", got)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestNew_Validates(t *testing.T) {
	if _, err := watch.New("", &reloadRecorder{}); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := watch.New("x.html", nil); err == nil {
		t.Fatal("expected error for nil target")
	}
}
