package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-tplform/pkg/document"
	"github.com/goliatone/go-tplform/pkg/export"
	"github.com/goliatone/go-tplform/pkg/logging"
	"github.com/goliatone/go-tplform/pkg/render"
)

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLoader enables Load.
func WithLoader(loader document.Loader) ControllerOption {
	return func(c *Controller) {
		c.loader = loader
	}
}

// WithNotifier routes notices to notifier instead of the logger.
func WithNotifier(notifier Notifier) ControllerOption {
	return func(c *Controller) {
		c.notifier = notifier
	}
}

// WithLogger reports notices through logger. Ignored when WithNotifier is
// also supplied.
func WithLogger(logger logging.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller holds the current Session and applies actions one at a time.
// Loads and renders run on the calling goroutine without holding the lock;
// their outcomes are applied only when no newer template arrived meanwhile.
type Controller struct {
	mu       sync.Mutex
	current  Session
	loads    uint64
	renderer Renderer
	loader   document.Loader
	notifier Notifier
	logger   logging.Logger
}

// NewController returns a Controller with an empty session.
func NewController(renderer Renderer, opts ...ControllerOption) (*Controller, error) {
	if renderer == nil {
		return nil, errors.New("session: renderer is required")
	}
	c := &Controller{renderer: renderer}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.notifier == nil {
		c.notifier = LogNotifier(c.logger)
	}
	return c, nil
}

// Session returns the current snapshot.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Upload replaces the template. Any load still in flight becomes stale.
func (c *Controller) Upload(source, template string) Session {
	c.mu.Lock()
	c.loads++
	c.current = c.current.UploadNamed(source, template)
	snapshot := c.current
	c.mu.Unlock()

	c.notify(Notice{Kind: NoticeLoaded, Generation: snapshot.Generation(), Source: source})
	return snapshot
}

// Load reads a template from src and uploads it. A failed load leaves the
// current session untouched. When another Load or Upload starts before this
// one finishes, the loaded document is dropped and ErrStale returned.
func (c *Controller) Load(ctx context.Context, src document.Source) (Session, error) {
	if c.loader == nil {
		return c.Session(), errors.New("session: loader is not configured")
	}

	c.mu.Lock()
	c.loads++
	seq := c.loads
	c.mu.Unlock()

	doc, err := c.loader.Load(ctx, src)
	if err != nil {
		err = fmt.Errorf("session: load template: %w", err)
		current := c.Session()
		c.notify(Notice{Kind: NoticeLoadFailed, Generation: current.Generation(), Source: locationOf(src), Err: err})
		return current, err
	}

	c.mu.Lock()
	if seq != c.loads {
		current := c.current
		c.mu.Unlock()
		c.notify(Notice{Kind: NoticeStaleDiscarded, Generation: current.Generation(), Source: doc.Name()})
		return current, ErrStale
	}
	c.current = c.current.UploadNamed(doc.Name(), doc.Content())
	snapshot := c.current
	c.mu.Unlock()

	c.notify(Notice{Kind: NoticeLoaded, Generation: snapshot.Generation(), Source: doc.Name()})
	return snapshot, nil
}

// Set updates a single form value.
func (c *Controller) Set(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.current.Set(name, value)
	if err != nil {
		return err
	}
	c.current = next
	return nil
}

// Merge applies known values and returns the ignored names.
func (c *Controller) Merge(values map[string]string) []string {
	c.mu.Lock()
	next, ignored := c.current.Merge(values)
	c.current = next
	generation := next.Generation()
	c.mu.Unlock()

	if len(ignored) > 0 {
		c.notify(Notice{Kind: NoticeIgnoredFields, Generation: generation, Fields: ignored})
	}
	return ignored
}

// Render renders the current snapshot. Compile and execution failures clear
// the previous result and are returned; formatting failures are only
// reported. When a new template is uploaded while rendering, the outcome is
// dropped and ErrStale returned.
func (c *Controller) Render(ctx context.Context) (render.Result, error) {
	snapshot := c.Session()
	out := snapshot.Render(ctx, c.renderer)

	c.mu.Lock()
	next, ok := c.current.Apply(out)
	if ok {
		c.current = next
	}
	c.mu.Unlock()

	notice := Notice{Generation: out.Generation, Source: snapshot.Source()}
	switch {
	case !ok:
		notice.Kind = NoticeStaleDiscarded
		c.notify(notice)
		return render.Result{}, ErrStale
	case out.Err != nil:
		notice.Kind = NoticeRenderFailed
		notice.Err = out.Err
		c.notify(notice)
		return render.Result{}, out.Err
	}

	if out.Result.FormatErr != nil {
		c.notify(Notice{Kind: NoticeFormatFailed, Generation: out.Generation, Source: snapshot.Source(), Err: out.Result.FormatErr})
	}
	notice.Kind = NoticeRendered
	c.notify(notice)
	return out.Result, nil
}

// Reformat reruns the display formatter over the current result.
func (c *Controller) Reformat(ctx context.Context) (render.Result, bool) {
	c.mu.Lock()
	c.current = c.current.Reformat(ctx, c.renderer)
	result, ok := c.current.Result()
	generation := c.current.Generation()
	c.mu.Unlock()

	if ok && result.FormatErr != nil {
		c.notify(Notice{Kind: NoticeFormatFailed, Generation: generation, Err: result.FormatErr})
	}
	return result, ok
}

// Export hands the raw output of the last render to exporter. The session is
// not modified, whatever the outcome.
func (c *Controller) Export(ctx context.Context, exporter export.Exporter) error {
	snapshot := c.Session()
	notice := Notice{Kind: NoticeExported, Generation: snapshot.Generation(), Source: snapshot.Source()}

	content, err := snapshot.Export()
	if err == nil {
		if exporter == nil {
			err = errors.New("session: exporter is nil")
		} else {
			err = exporter.Export(ctx, content)
		}
	}
	if err != nil {
		notice.Kind = NoticeExportFailed
		notice.Err = err
	}
	c.notify(notice)
	return err
}

func (c *Controller) notify(n Notice) {
	if c.notifier != nil {
		c.notifier.Notify(n)
	}
}

func locationOf(src document.Source) string {
	if src == nil {
		return ""
	}
	return src.Location()
}
