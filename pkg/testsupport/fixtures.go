// Package testsupport holds fixture and golden-file helpers shared by the
// package tests.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tplform/pkg/document"
	"github.com/goliatone/go-tplform/pkg/form"
)

// LoadTemplate reads a template fixture into a Document with a file source.
func LoadTemplate(t *testing.T, path string) document.Document {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read template %s: %v", path, err)
	}
	doc, err := document.NewDocument(document.SourceFromFile(path), data)
	if err != nil {
		t.Fatalf("new document %s: %v", path, err)
	}
	return doc
}

// LoadValues reads the values fixture sitting next to a template:
// invitation.html pairs with invitation.values.yaml. A missing file yields
// an empty map.
func LoadValues(t *testing.T, templatePath string) map[string]string {
	t.Helper()

	path := strings.TrimSuffix(templatePath, filepath.Ext(templatePath)) + ".values.yaml"
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]string{}
	}
	if err != nil {
		t.Fatalf("open values %s: %v", path, err)
	}
	defer f.Close()

	values, err := form.LoadValues(f)
	if err != nil {
		t.Fatalf("parse values %s: %v", path, err)
	}
	return values
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGoldenString reads a golden file.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
