package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tplform/pkg/placeholder"
	"github.com/goliatone/go-tplform/pkg/render/template"
)

// Option configures the pongo2 adapter before construction.
type Option func(*config)

type config struct {
	baseDir    string
	autoescape bool
	globalData map[string]any
	bannedTags []string
}

// fileTags read other files through the template set loader.
var fileTags = []string{"include", "extends", "import", "ssi"}

// WithBaseDir resolves `{% include %}`, `{% extends %}`, `{% import %}` and
// `{% ssi %}` paths relative to dir. Without it those tags are banned.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithAutoescape toggles HTML escaping of substituted values. Escaping is on
// by default so `{{name}}` behaves like a Handlebars double-stash.
func WithAutoescape(enabled bool) Option {
	return func(cfg *config) {
		cfg.autoescape = enabled
	}
}

// WithGlobalData seeds values available to every template. Form values win
// over globals with the same name.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithBannedTags rejects templates using any of the named tags at compile
// time.
func WithBannedTags(tags ...string) Option {
	return func(cfg *config) {
		for _, tag := range tags {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				cfg.bannedTags = append(cfg.bannedTags, trimmed)
			}
		}
	}
}

// Engine compiles template strings with a pongo2 template set. Placeholder
// tokens pongo2 cannot resolve as variables (`{{not}}`, `{{true}}`, `{{1}}`,
// `{{pongo2}}`) are rewritten into lookups on a values map, so every
// placeholder substitutes. Other tags and filters are left to pongo2.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	autoescape  bool
	globals     map[string]any
}

// Ensure Engine implements the Compiler interface.
var _ template.Compiler = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		autoescape: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("tplform", loader),
		autoescape:  cfg.autoescape,
		globals:     make(map[string]any, len(cfg.globalData)),
	}

	bannedTags := cfg.bannedTags
	if cfg.baseDir == "" {
		bannedTags = append(append([]string(nil), fileTags...), bannedTags...)
	}
	banned := make(map[string]struct{}, len(bannedTags))
	for _, tag := range bannedTags {
		if _, dup := banned[tag]; dup {
			continue
		}
		banned[tag] = struct{}{}
		if err := engine.templateSet.BanTag(tag); err != nil {
			return nil, fmt.Errorf("gotemplate: ban tag %q: %w", tag, err)
		}
	}
	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("gotemplate: apply global data: %w", err)
	}

	return engine, nil
}

// Compile parses source into an executable template. Syntax errors reported
// by pongo2 (unbalanced braces, unknown tags, unclosed blocks) are returned
// unchanged so callers can surface line and column details.
func (e *Engine) Compile(source string) (template.Executable, error) {
	if e == nil || e.templateSet == nil {
		return nil, errors.New("gotemplate: engine is nil")
	}

	e.mu.RLock()
	tmpl, err := e.templateSet.FromString(lookupPlaceholders(source))
	e.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	return &compiled{engine: e, tmpl: tmpl}, nil
}

// GlobalContext seeds global data on the template set.
func (e *Engine) GlobalContext(data map[string]any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if len(data) == 0 {
		return nil
	}

	globalCtx := e.toContext(data)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	for key, value := range data {
		e.globals[strings.TrimSpace(key)] = value
	}
	return nil
}

// toContext copies data into a pongo2 context. Keys that are not valid pongo2
// identifiers are dropped; pongo2 would otherwise fail the whole execution.
// With autoescape disabled string values are marked safe.
func (e *Engine) toContext(data map[string]any) pongo2.Context {
	out := make(pongo2.Context, len(data))
	for key, value := range data {
		key = strings.TrimSpace(key)
		if !validIdentifier(key) {
			continue
		}
		if s, ok := value.(string); ok && !e.autoescape {
			out[key] = pongo2.AsSafeValue(s)
			continue
		}
		out[key] = value
	}
	return out
}

// valuesContext builds the map placeholder lookups read from: globals first,
// then data. Keys are not restricted to pongo2 identifiers.
func (e *Engine) valuesContext(data map[string]any) map[string]*pongo2.Value {
	out := make(map[string]*pongo2.Value, len(e.globals)+len(data))
	add := func(key string, value any) {
		if s, ok := value.(string); ok && !e.autoescape {
			out[key] = pongo2.AsSafeValue(s)
			return
		}
		out[key] = pongo2.AsValue(value)
	}
	for key, value := range e.globals {
		add(key, value)
	}
	for key, value := range data {
		add(strings.TrimSpace(key), value)
	}
	return out
}

// valuesKey names the context entry holding placeholder values. It is a
// valid pongo2 identifier no placeholder lookup can shadow.
const valuesKey = "__tplform_values"

// lookupPlaceholders rewrites `{{name}}` tokens whose name is not a usable
// pongo2 variable into a subscript lookup on the values map. Other tokens
// stay as written so loop and `with` variables keep shadowing form values.
func lookupPlaceholders(source string) string {
	var (
		b      strings.Builder
		cursor int
	)
	for _, occ := range placeholder.Occurrences(source) {
		if !reserved(occ.Name) {
			continue
		}
		b.WriteString(source[cursor:occ.Start])
		b.WriteString("{{ " + valuesKey + `["` + occ.Name + `"] }}`)
		cursor = occ.End
	}
	if cursor == 0 {
		return source
	}
	b.WriteString(source[cursor:])
	return b.String()
}

// reserved reports whether pongo2 lexes name as something other than a
// context variable: keywords, nil, numbers, and the "pongo2" entry it
// injects.
func reserved(name string) bool {
	if name == "" || name == "pongo2" || name == "nil" {
		return true
	}
	if name[0] >= '0' && name[0] <= '9' {
		return true
	}
	for _, kw := range pongo2.TokenKeywords {
		if name == kw {
			return true
		}
	}
	return false
}

type compiled struct {
	engine *Engine
	tmpl   *pongo2.Template
}

func (c *compiled) Execute(data map[string]any) (string, error) {
	var buf bytes.Buffer

	ctx := c.engine.toContext(data)

	c.engine.mu.RLock()
	ctx[valuesKey] = c.engine.valuesContext(data)
	err := c.tmpl.ExecuteWriter(ctx, &buf)
	c.engine.mu.RUnlock()

	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template string: %w", err)
	}
	return buf.String(), nil
}

func validIdentifier(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
