package tplform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tplform"
	"github.com/goliatone/go-tplform/pkg/document"
	"github.com/goliatone/go-tplform/pkg/orchestrator"
	"github.com/goliatone/go-tplform/pkg/placeholder"
	"github.com/goliatone/go-tplform/pkg/render"
)

func TestRenderString(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name     string
		template string
		values   map[string]string
		want     string
	}{
		{name: "substitutes", template: "Hello {{name}}!", values: map[string]string{"name": "World"}, want: "Hello World!"},
		{name: "missing value is empty", template: "Hi {{x}}", want: "Hi "},
		{name: "repeated placeholder", template: "{{a}}-{{b}}-{{a}}", values: map[string]string{"a": "1", "b": "2"}, want: "1-2-1"},
		{name: "no placeholders", template: "no placeholders here", want: "no placeholders here"},
		{name: "empty template", template: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := tplform.RenderString(ctx, tc.template, tc.values, "")
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if result.Raw != tc.want {
				t.Fatalf("raw = %q, want %q", result.Raw, tc.want)
			}
		})
	}
}

func TestRenderString_CompileFailure(t *testing.T) {
	_, err := tplform.RenderString(context.Background(), "Hello {{name", nil, render.DialectHTML)
	var compileErr *render.CompilationError
	if !errors.As(err, &compileErr) {
		t.Fatalf("expected CompilationError, got %v", err)
	}
}

func TestRenderString_FileTagsRejected(t *testing.T) {
	for _, tmpl := range []string{
		`X{% ssi "/etc/hostname" %}Y`,
		`{% include "/etc/os-release" %}`,
	} {
		result, err := tplform.RenderString(context.Background(), tmpl, nil, "")
		var compileErr *render.CompilationError
		if !errors.As(err, &compileErr) {
			t.Fatalf("%q: expected CompilationError, got %v (raw %q)", tmpl, err, result.Raw)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	if diff := cmp.Diff(placeholder.Set{"a", "b"}, tplform.Placeholders("{{a}}-{{b}}-{{a}}")); diff != "" {
		t.Fatalf("placeholders mismatch (-want +got):\n%s", diff)
	}
}

func TestExampleTemplatesRender(t *testing.T) {
	names := tplform.ExampleNames()
	want := []string{"deployment.yaml", "event.json", "invitation.html", "invoice.txt"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("example names mismatch (-want +got):\n%s", diff)
	}

	loader := tplform.NewLoader(document.WithFileSystem(tplform.ExampleTemplates()))
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			out, err := tplform.RenderSource(context.Background(), document.SourceFromFS(name), nil, orchestrator.WithLoader(loader))
			if err != nil {
				t.Fatalf("render %s: %v", name, err)
			}
			if out.Placeholders.Len() == 0 {
				t.Fatalf("%s should declare placeholders", name)
			}
			if out.Result.FormatErr != nil {
				t.Fatalf("%s display formatting failed: %v", name, out.Result.FormatErr)
			}
			if out.Result.Dialect != render.DialectFromFilename(name) {
				t.Fatalf("unexpected dialect %q for %s", out.Result.Dialect, name)
			}
		})
	}
}

func TestNewController(t *testing.T) {
	orch := tplform.NewOrchestrator(orchestrator.WithLoader(
		tplform.NewLoader(document.WithFileSystem(tplform.ExampleTemplates())),
	))
	ctrl, err := tplform.NewController(orch, render.DialectText)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	s, err := ctrl.Load(context.Background(), document.SourceFromFS("invoice.txt"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := placeholder.Set{"number", "customer", "amount", "currency", "due_date"}
	if diff := cmp.Diff(want, s.Placeholders()); diff != "" {
		t.Fatalf("placeholders mismatch (-want +got):\n%s", diff)
	}
}
