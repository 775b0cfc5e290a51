package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	internalLoader "github.com/goliatone/go-tplform/internal/document/loader"
	"github.com/goliatone/go-tplform/pkg/document"
	"github.com/goliatone/go-tplform/pkg/form"
	"github.com/goliatone/go-tplform/pkg/format"
	"github.com/goliatone/go-tplform/pkg/logging"
	"github.com/goliatone/go-tplform/pkg/placeholder"
	"github.com/goliatone/go-tplform/pkg/render"
	rendertemplate "github.com/goliatone/go-tplform/pkg/render/template"
	"github.com/goliatone/go-tplform/pkg/render/template/gotemplate"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom template loader.
func WithLoader(loader document.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithCompiler injects the template compiler shared by every render.
func WithCompiler(compiler rendertemplate.Compiler) Option {
	return func(o *Orchestrator) {
		o.compiler = compiler
	}
}

// WithFormatters injects the display formatter registry.
func WithFormatters(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.formatters = registry
	}
}

// WithDefaultDialect sets the dialect used when a request names none and the
// template name carries no recognised extension.
func WithDefaultDialect(dialect render.Dialect) Option {
	return func(o *Orchestrator) {
		o.defaultDialect = dialect
	}
}

// WithFormatting toggles the display formatting pass.
func WithFormatting(enabled bool) Option {
	return func(o *Orchestrator) {
		o.format = enabled
	}
}

// WithLogger routes non-fatal failures to logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator coordinates the full pipeline from template source to
// rendered output. It applies sensible defaults (pongo2 compiler, built-in
// formatters, file/fs loader) while remaining open to dependency injection.
type Orchestrator struct {
	loader         document.Loader
	compiler       rendertemplate.Compiler
	formatters     *render.Registry
	defaultDialect render.Dialect
	format         bool
	logger         logging.Logger

	mu            sync.Mutex
	renderers     map[render.Dialect]*render.Renderer
	initialiseErr error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultDialect: render.DialectText,
		format:         true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one rendering job.
type Request struct {
	// Source identifies where the template lives. Optional when Document is
	// supplied.
	Source document.Source

	// Document allows callers to bypass the loader when they already hold the
	// template text.
	Document *document.Document

	// Values prefills placeholders. Names that are not placeholders of the
	// template are reported in Output.Ignored.
	Values map[string]string

	// Dialect selects the display formatter. When empty it is derived from the
	// template name, falling back to the configured default.
	Dialect render.Dialect

	// RejectUnknown fails the request when Values names a field the template
	// does not have.
	RejectUnknown bool
}

// Output is the outcome of Generate.
type Output struct {
	Document     document.Document
	Placeholders placeholder.Set
	Form         form.Data
	Result       render.Result
	Ignored      []string
}

// ErrUnknownValues is returned for RejectUnknown requests carrying values for
// names the template does not define.
var ErrUnknownValues = errors.New("orchestrator: values for unknown placeholders")

// Inspect loads the template and returns its placeholders without rendering.
func (o *Orchestrator) Inspect(ctx context.Context, req Request) (document.Document, placeholder.Set, error) {
	if err := o.check(ctx); err != nil {
		return document.Document{}, nil, err
	}
	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return document.Document{}, nil, err
	}
	return doc, placeholder.Extract(doc.Content()), nil
}

// Generate executes the loader → extractor → form → renderer sequence.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Output, error) {
	doc, set, err := o.Inspect(ctx, req)
	if err != nil {
		return Output{}, err
	}

	data, ignored := form.Initialize(set).Merge(req.Values)
	if req.RejectUnknown && len(ignored) > 0 {
		return Output{}, fmt.Errorf("%w: %s", ErrUnknownValues, strings.Join(ignored, ", "))
	}
	if len(ignored) > 0 {
		o.logger.Warn("ignoring values for unknown placeholders", "fields", ignored, "template", doc.Name())
	}

	renderer, err := o.rendererFor(o.dialectFor(req.Dialect, doc.Name()))
	if err != nil {
		return Output{}, err
	}

	result, err := renderer.Render(ctx, doc.Content(), data)
	if err != nil {
		return Output{}, fmt.Errorf("orchestrator: render %s: %w", displayName(doc), err)
	}

	return Output{
		Document:     doc,
		Placeholders: set,
		Form:         data,
		Result:       result,
		Ignored:      ignored,
	}, nil
}

// Renderer returns the renderer configured for dialect, for callers that run
// an interactive session on top of the orchestrator's defaults.
func (o *Orchestrator) Renderer(dialect render.Dialect) (*render.Renderer, error) {
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	return o.rendererFor(o.dialectFor(dialect, ""))
}

// Loader returns the configured template loader.
func (o *Orchestrator) Loader() document.Loader {
	return o.loader
}

// DialectFor resolves the dialect for a template name: explicit wins, then a
// recognised extension, then the default.
func (o *Orchestrator) DialectFor(explicit render.Dialect, name string) render.Dialect {
	return o.dialectFor(explicit, name)
}

func (o *Orchestrator) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.initialiseErr
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (document.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return document.Document{}, errors.New("orchestrator: source or document is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return document.Document{}, fmt.Errorf("orchestrator: load template: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) dialectFor(explicit render.Dialect, name string) render.Dialect {
	if explicit != "" {
		return explicit
	}
	if ext := strings.TrimPrefix(filepath.Ext(name), "."); ext != "" {
		if dialect, err := render.ParseDialect(ext); err == nil {
			return dialect
		}
	}
	return o.defaultDialect
}

func (o *Orchestrator) rendererFor(dialect render.Dialect) (*render.Renderer, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if r, ok := o.renderers[dialect]; ok {
		return r, nil
	}
	r, err := render.New(
		render.WithCompiler(o.compiler),
		render.WithFormatters(o.formatters),
		render.WithDialect(dialect),
		render.WithFormatting(o.format),
		render.WithLogger(o.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", dialect, err)
	}
	o.renderers[dialect] = r
	return r, nil
}

func (o *Orchestrator) applyDefaults() {
	o.logger = logging.OrNop(o.logger)
	o.renderers = make(map[render.Dialect]*render.Renderer)

	if o.loader == nil {
		o.loader = internalLoader.New(document.NewLoaderOptions())
	}
	if o.compiler == nil {
		engine, err := gotemplate.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default compiler: %w", err)
			return
		}
		o.compiler = engine
	}
	if o.formatters == nil {
		o.formatters = format.Defaults()
	}
	if o.defaultDialect == "" {
		o.defaultDialect = render.DialectText
	}
}

func displayName(doc document.Document) string {
	if name := doc.Name(); name != "" {
		return name
	}
	return "template"
}
