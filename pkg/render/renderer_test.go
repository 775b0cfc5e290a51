package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-tplform/pkg/form"
	"github.com/goliatone/go-tplform/pkg/logging"
	"github.com/goliatone/go-tplform/pkg/placeholder"
	"github.com/goliatone/go-tplform/pkg/render"
	rendertemplate "github.com/goliatone/go-tplform/pkg/render/template"
)

func TestRender_SubstitutesValues(t *testing.T) {
	r := newRenderer(t)
	data := formFor(t, "Hello {{name}}!", map[string]string{"name": "World"})

	result, err := r.Render(context.Background(), "Hello {{name}}!", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result.Raw != "Hello World!" {
		t.Fatalf("unexpected raw output %q", result.Raw)
	}
	if result.Export() != result.Raw {
		t.Fatalf("export must equal raw output")
	}
}

func TestRender_MissingKeySubstitutesEmpty(t *testing.T) {
	r := newRenderer(t)

	result, err := r.Render(context.Background(), "Hi {{x}}", form.Data{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result.Raw != "Hi " {
		t.Fatalf("expected %q, got %q", "Hi ", result.Raw)
	}

	result, err = r.RenderContext(context.Background(), "Hi {{x}}", nil)
	if err != nil || result.Raw != "Hi " {
		t.Fatalf("nil context: %q, %v", result.Raw, err)
	}
}

func TestRender_EveryExtractedNameSubstitutes(t *testing.T) {
	r := newRenderer(t)

	for _, name := range []string{"1", "42", "true", "False", "pongo2", "not", "in", "and", "or", "_"} {
		t.Run(name, func(t *testing.T) {
			tmpl := "A {{" + name + "}} B"
			if diff := cmp.Diff(placeholder.Set{name}, placeholder.Extract(tmpl)); diff != "" {
				t.Fatalf("extract mismatch (-want +got):\n%s", diff)
			}

			result, err := r.Render(context.Background(), tmpl, formFor(t, tmpl, map[string]string{name: "V"}))
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if result.Raw != "A V B" {
				t.Fatalf("raw = %q, want %q", result.Raw, "A V B")
			}
		})
	}
}

func TestRender_CompilationFailure(t *testing.T) {
	r := newRenderer(t)

	result, err := r.Render(context.Background(), "Hello {{name", form.Data{})
	var compileErr *render.CompilationError
	if !errors.As(err, &compileErr) {
		t.Fatalf("expected CompilationError, got %v", err)
	}
	if diff := cmp.Diff(render.Result{}, result, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("expected zero result on failure (-want +got):\n%s", diff)
	}
}

func TestRender_ExecutionFailure(t *testing.T) {
	boom := errors.New("boom")
	compiler := rendertemplate.CompilerFunc(func(string) (rendertemplate.Executable, error) {
		return rendertemplate.ExecutableFunc(func(map[string]any) (string, error) {
			return "", boom
		}), nil
	})
	r := newRenderer(t, render.WithCompiler(compiler))

	_, err := r.Render(context.Background(), "anything", form.Data{})
	var execErr *render.ExecutionError
	if !errors.As(err, &execErr) || !errors.Is(err, boom) {
		t.Fatalf("expected ExecutionError wrapping boom, got %v", err)
	}
}

func TestRender_IsIdempotent(t *testing.T) {
	r := newRenderer(t)
	tmpl := "<p>{{a}} and {{b}}</p>"
	data := formFor(t, tmpl, map[string]string{"a": "1", "b": "2"})

	first, err := r.Render(context.Background(), tmpl, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := r.Render(context.Background(), tmpl, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff(first, second, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("render not idempotent (-first +second):\n%s", diff)
	}
}

func TestRender_DisplayFormatting(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(render.DialectHTML, render.FormatterFunc(func(_ context.Context, markup string) (string, error) {
		return strings.ToUpper(markup), nil
	}))
	r := newRenderer(t, render.WithFormatters(registry), render.WithDialect(render.DialectHTML))

	result, err := r.Render(context.Background(), "<b>{{v}}</b>", formFor(t, "{{v}}", map[string]string{"v": "x"}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := render.Result{
		Raw:       "<b>x</b>",
		Display:   "<B>X</B>",
		Dialect:   render.DialectHTML,
		Formatted: true,
	}
	if diff := cmp.Diff(want, result, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_FormattingFailureFallsBackToRaw(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	registry := render.NewRegistry()
	registry.MustRegister(render.DialectHTML, render.FormatterFunc(func(context.Context, string) (string, error) {
		return "garbage", errors.New("malformed markup")
	}))
	r := newRenderer(t,
		render.WithFormatters(registry),
		render.WithDialect(render.DialectHTML),
		render.WithLogger(logging.NewZap(zap.New(core).Sugar())),
	)

	result, err := r.Render(context.Background(), "<div>{{v}}", formFor(t, "{{v}}", map[string]string{"v": "x"}))
	if err != nil {
		t.Fatalf("formatting failure must not fail the render: %v", err)
	}
	if result.Raw != "<div>x" || result.Display != result.Raw || result.Formatted {
		t.Fatalf("unexpected fallback result %+v", result)
	}
	var fmtErr *render.FormattingError
	if !errors.As(result.FormatErr, &fmtErr) || fmtErr.Dialect != render.DialectHTML {
		t.Fatalf("expected FormattingError, got %v", result.FormatErr)
	}
	if result.Export() != "<div>x" {
		t.Fatalf("export changed by formatting failure: %q", result.Export())
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
}

func TestRender_FormatterPanicIsContained(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(render.DialectJSON, render.FormatterFunc(func(context.Context, string) (string, error) {
		panic("formatter bug")
	}))
	r := newRenderer(t, render.WithFormatters(registry), render.WithDialect(render.DialectJSON))

	result, err := r.RenderContext(context.Background(), `{"a": 1}`, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result.FormatErr == nil || result.Display != result.Raw {
		t.Fatalf("expected contained formatter panic, got %+v", result)
	}
}

func TestRender_FormattingDisabled(t *testing.T) {
	calls := 0
	registry := render.NewRegistry()
	registry.MustRegister(render.DialectText, render.FormatterFunc(func(_ context.Context, markup string) (string, error) {
		calls++
		return "formatted", nil
	}))
	r := newRenderer(t, render.WithFormatters(registry), render.WithFormatting(false))

	result, err := r.RenderContext(context.Background(), "plain", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if calls != 0 || result.Display != "plain" || result.Formatted {
		t.Fatalf("formatter ran while disabled: %+v", result)
	}

	formatted := r.Format(context.Background(), result)
	if calls != 1 || formatted.Display != "formatted" || formatted.Raw != "plain" {
		t.Fatalf("explicit format mismatch: %+v", formatted)
	}
}

func TestRender_NoFormatterForDialect(t *testing.T) {
	r := newRenderer(t, render.WithDialect(render.DialectYAML))

	result, err := r.RenderContext(context.Background(), "a: {{v}}", map[string]any{"v": "1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result.Display != "a: 1" || result.Formatted || result.FormatErr != nil {
		t.Fatalf("unexpected result without formatter: %+v", result)
	}
}

func TestRender_ContextErrors(t *testing.T) {
	r := newRenderer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, "x", form.Data{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func newRenderer(t *testing.T, options ...render.Option) *render.Renderer {
	t.Helper()

	r, err := render.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func formFor(t *testing.T, tmpl string, values map[string]string) form.Data {
	t.Helper()

	data := form.Initialize(placeholder.Extract(tmpl))
	for name, value := range values {
		var err error
		data, err = data.Set(name, value)
		if err != nil {
			t.Fatalf("set %q: %v", name, err)
		}
	}
	return data
}
