package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-tplform/pkg/form"
	"github.com/goliatone/go-tplform/pkg/logging"
	rendertemplate "github.com/goliatone/go-tplform/pkg/render/template"
	"github.com/goliatone/go-tplform/pkg/render/template/gotemplate"
)

// Formatter pretty-prints rendered output for the preview copy. It must never
// be applied to the exported output.
type Formatter interface {
	Format(ctx context.Context, markup string) (string, error)
}

// FormatterFunc adapts a function into a Formatter.
type FormatterFunc func(ctx context.Context, markup string) (string, error)

// Format implements Formatter.
func (fn FormatterFunc) Format(ctx context.Context, markup string) (string, error) {
	return fn(ctx, markup)
}

// Result is the outcome of a successful render.
type Result struct {
	// Raw is the literal substitution output. Exports always use Raw.
	Raw string
	// Display is the preview copy. It equals Raw when formatting is disabled,
	// has not run, or failed.
	Display string
	// Dialect is the markup dialect the display pass was configured for.
	Dialect Dialect
	// Formatted reports whether Display came from a successful formatter run.
	Formatted bool
	// FormatErr holds the *FormattingError of a failed display pass.
	FormatErr error
}

// Export returns the content used for clipboard and file exports.
func (r Result) Export() string {
	return r.Raw
}

// Renderer compiles a template, substitutes form values and optionally runs
// the display formatter for the configured dialect.
type Renderer struct {
	compiler   rendertemplate.Compiler
	formatters *Registry
	dialect    Dialect
	format     bool
	logger     logging.Logger
}

// New constructs a Renderer. Without WithCompiler a pongo2 engine with
// default settings is used.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		dialect: DialectText,
		format:  true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	compiler := cfg.compiler
	if compiler == nil {
		engine, err := gotemplate.New()
		if err != nil {
			return nil, fmt.Errorf("render: configure template compiler: %w", err)
		}
		compiler = engine
	}

	formatters := cfg.formatters
	if formatters == nil {
		formatters = NewRegistry()
	}

	return &Renderer{
		compiler:   compiler,
		formatters: formatters,
		dialect:    cfg.dialect,
		format:     cfg.format,
		logger:     logging.OrNop(cfg.logger),
	}, nil
}

// Dialect reports the markup dialect used for display formatting.
func (r *Renderer) Dialect() Dialect {
	return r.dialect
}

// Render compiles source and executes it with data. Compilation and
// execution failures return a *CompilationError or *ExecutionError and no
// result. A formatting failure is not an error: it is recorded on
// Result.FormatErr and Display falls back to Raw.
func (r *Renderer) Render(ctx context.Context, source string, data form.Data) (Result, error) {
	return r.RenderContext(ctx, source, data.Context())
}

// RenderContext is Render for callers holding a plain substitution context
// instead of form.Data. Missing names substitute as an empty string.
func (r *Renderer) RenderContext(ctx context.Context, source string, values map[string]any) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("render: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if r == nil || r.compiler == nil {
		return Result{}, errors.New("render: compiler is nil")
	}

	exe, err := r.compiler.Compile(source)
	if err != nil {
		return Result{}, &CompilationError{Err: err}
	}

	if values == nil {
		values = map[string]any{}
	}
	raw, err := exe.Execute(values)
	if err != nil {
		return Result{}, &ExecutionError{Err: err}
	}

	result := Result{
		Raw:     raw,
		Display: raw,
		Dialect: r.dialect,
	}
	if !r.format {
		return result, nil
	}
	return r.Format(ctx, result), nil
}

// Format runs the display formatter for the renderer's dialect over
// result.Raw. Raw is never modified; on failure Display is reset to Raw and
// the error is recorded on the returned result.
func (r *Renderer) Format(ctx context.Context, result Result) Result {
	result.Dialect = r.dialect
	result.Display = result.Raw
	result.Formatted = false
	result.FormatErr = nil

	formatter, ok := r.formatters.Lookup(r.dialect)
	if !ok {
		return result
	}

	display, err := safeFormat(ctx, formatter, result.Raw)
	if err != nil {
		result.FormatErr = &FormattingError{Dialect: r.dialect, Err: err}
		r.logger.Warn("display formatting failed, showing raw output",
			"dialect", string(r.dialect),
			"error", err,
		)
		return result
	}

	result.Display = display
	result.Formatted = true
	return result
}

func safeFormat(ctx context.Context, formatter Formatter, raw string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = "", fmt.Errorf("formatter panic: %v", rec)
		}
	}()
	return formatter.Format(ctx, raw)
}
