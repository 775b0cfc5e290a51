// Package tplform extracts {{name}} placeholders from a template, collects a
// value for each and renders the result. This package exposes convenience
// constructors over the pkg/ building blocks.
package tplform

import (
	"context"
	"fmt"

	"github.com/goliatone/go-tplform/pkg/document"
	"github.com/goliatone/go-tplform/pkg/orchestrator"
	"github.com/goliatone/go-tplform/pkg/placeholder"
	"github.com/goliatone/go-tplform/pkg/render"
	"github.com/goliatone/go-tplform/pkg/session"
)

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// Output aliases orchestrator.Output.
type Output = orchestrator.Output

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Placeholders returns the distinct placeholder names of text in order of
// first appearance.
func Placeholders(text string) placeholder.Set {
	return placeholder.Extract(text)
}

// RenderString renders template with values. dialect selects the display
// formatter; pass "" for plain text.
func RenderString(ctx context.Context, template string, values map[string]string, dialect render.Dialect, options ...orchestrator.Option) (render.Result, error) {
	doc, err := document.NewDocument(document.SourceFromReader("", nil), []byte(template))
	if err != nil {
		return render.Result{}, err
	}
	out, err := orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Document: &doc,
		Values:   values,
		Dialect:  dialect,
	})
	if err != nil {
		return render.Result{}, err
	}
	return out.Result, nil
}

// RenderSource loads the template from src and renders it with values. The
// dialect is derived from the source name.
func RenderSource(ctx context.Context, src document.Source, values map[string]string, options ...orchestrator.Option) (Output, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Source: src,
		Values: values,
	})
}

// NewController builds an interactive session controller whose renderer and
// loader come from orch. A nil orch uses the defaults.
func NewController(orch *orchestrator.Orchestrator, dialect render.Dialect, options ...session.ControllerOption) (*session.Controller, error) {
	if orch == nil {
		orch = orchestrator.New()
	}
	renderer, err := orch.Renderer(dialect)
	if err != nil {
		return nil, fmt.Errorf("tplform: renderer: %w", err)
	}
	opts := append([]session.ControllerOption{session.WithLoader(orch.Loader())}, options...)
	return session.NewController(renderer, opts...)
}
