package session

import (
	"context"
	"errors"

	"github.com/goliatone/go-tplform/pkg/form"
	"github.com/goliatone/go-tplform/pkg/placeholder"
	"github.com/goliatone/go-tplform/pkg/render"
)

var (
	// ErrNoTemplate is returned when an action needs a template and none has
	// been uploaded yet.
	ErrNoTemplate = errors.New("session: no template loaded")
	// ErrNothingToExport is returned by Export when there is no render result.
	ErrNothingToExport = errors.New("session: nothing to export")
	// ErrStale reports a load or render outcome that was discarded because a
	// newer template was uploaded while it ran.
	ErrStale = errors.New("session: outcome is stale")
)

// Renderer is the subset of *render.Renderer a session needs.
type Renderer interface {
	Render(ctx context.Context, source string, data form.Data) (render.Result, error)
	Format(ctx context.Context, result render.Result) render.Result
}

// Session is an immutable snapshot of the editing state. The zero value is an
// empty session with no template.
type Session struct {
	generation   uint64
	loaded       bool
	source       string
	template     string
	placeholders placeholder.Set
	data         form.Data
	result       *render.Result
}

// New returns an empty session.
func New() Session {
	return Session{}
}

// Upload replaces the template and resets everything derived from it.
func (s Session) Upload(template string) Session {
	return s.UploadNamed("", template)
}

// UploadNamed is Upload with a label for the template origin, such as a file
// name. The label is informational and drives dialect detection in callers.
func (s Session) UploadNamed(source, template string) Session {
	set := placeholder.Extract(template)
	return Session{
		generation:   s.generation + 1,
		loaded:       true,
		source:       source,
		template:     template,
		placeholders: set,
		data:         form.Initialize(set),
	}
}

// Generation counts uploads. It changes exactly when the template does.
func (s Session) Generation() uint64 {
	return s.generation
}

// Loaded reports whether a template has been uploaded.
func (s Session) Loaded() bool {
	return s.loaded
}

// Source returns the label given to UploadNamed.
func (s Session) Source() string {
	return s.source
}

// Template returns the current template text.
func (s Session) Template() string {
	return s.template
}

// Placeholders returns the names extracted from the template, in order of
// first appearance.
func (s Session) Placeholders() placeholder.Set {
	return s.placeholders.Clone()
}

// Form returns the current form values.
func (s Session) Form() form.Data {
	return s.data
}

// Value returns the value for name, or "" when unset or unknown.
func (s Session) Value(name string) string {
	return s.data.Get(name)
}

// Result returns the last render result, if any.
func (s Session) Result() (render.Result, bool) {
	if s.result == nil {
		return render.Result{}, false
	}
	return *s.result, true
}

// Set updates one form value. Unknown names return form.ErrUnknownField and
// the unchanged session. The current render result is kept until the next
// render.
func (s Session) Set(name, value string) (Session, error) {
	data, err := s.data.Set(name, value)
	if err != nil {
		return s, err
	}
	s.data = data
	return s, nil
}

// Merge applies every known name from values and returns the ignored names.
func (s Session) Merge(values map[string]string) (Session, []string) {
	data, ignored := s.data.Merge(values)
	s.data = data
	return s, ignored
}

// Outcome is the result of rendering a session snapshot.
type Outcome struct {
	Generation uint64
	Result     render.Result
	Err        error
}

// Render renders the session's template with its form values. The session
// itself is not modified; pass the outcome to Apply.
func (s Session) Render(ctx context.Context, renderer Renderer) Outcome {
	out := Outcome{Generation: s.generation}
	if !s.loaded {
		out.Err = ErrNoTemplate
		return out
	}
	if renderer == nil {
		out.Err = errors.New("session: renderer is nil")
		return out
	}
	out.Result, out.Err = renderer.Render(ctx, s.template, s.data)
	return out
}

// Apply folds a render outcome into the session. Outcomes from another
// generation are discarded and reported with ok=false. A failed outcome
// clears the previous result.
func (s Session) Apply(out Outcome) (next Session, ok bool) {
	if out.Generation != s.generation {
		return s, false
	}
	if out.Err != nil {
		s.result = nil
		return s, true
	}
	result := out.Result
	s.result = &result
	return s, true
}

// Reformat reruns the display formatter over the current result. Raw output
// is untouched.
func (s Session) Reformat(ctx context.Context, renderer Renderer) Session {
	if s.result == nil || renderer == nil {
		return s
	}
	result := renderer.Format(ctx, *s.result)
	s.result = &result
	return s
}

// Export returns the raw output of the last render. The display copy is never
// exported.
func (s Session) Export() (string, error) {
	if s.result == nil {
		return "", ErrNothingToExport
	}
	return s.result.Export(), nil
}
