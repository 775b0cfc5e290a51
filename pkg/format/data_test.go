package format_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tplform/pkg/format"
	"github.com/goliatone/go-tplform/pkg/render"
)

func TestJSON(t *testing.T) {
	got, err := format.NewJSON().Format(context.Background(), `{"name":"Ada","tags":["a","b"]}`)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "{\n  \"name\": \"Ada\",\n  \"tags\": [\n    \"a\",\n    \"b\"\n  ]\n}\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}

	if _, err := format.NewJSON().Format(context.Background(), `{"name": }`); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestYAML(t *testing.T) {
	got, err := format.NewYAML().Format(context.Background(), "name:    Ada\nnested:\n      key: v\n---\nother: 1\n")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "name: Ada\nnested:\n  key: v\n---\nother: 1\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}

	if _, err := format.NewYAML().Format(context.Background(), "a: [1, 2"); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}

func TestText(t *testing.T) {
	got, err := format.NewText().Format(context.Background(), "line one   \r\nline two\t\n\n\n")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != "line one\nline two\n" {
		t.Fatalf("unexpected text output %q", got)
	}
}

func TestDefaults(t *testing.T) {
	registry := format.Defaults()
	want := []render.Dialect{render.DialectHTML, render.DialectJSON, render.DialectText, render.DialectYAML}
	if diff := cmp.Diff(want, registry.List()); diff != "" {
		t.Fatalf("default dialects mismatch (-want +got):\n%s", diff)
	}
}
