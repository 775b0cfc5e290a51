// Package tui walks a user through a template session in the terminal: one
// prompt per placeholder, a preview of the rendered output, then export.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-tplform/pkg/export"
	"github.com/goliatone/go-tplform/pkg/render"
	"github.com/goliatone/go-tplform/pkg/session"
)

// Workspace is the part of *session.Controller the prompting flow drives.
type Workspace interface {
	Session() session.Session
	Set(name, value string) error
	Render(ctx context.Context) (render.Result, error)
	Export(ctx context.Context, exporter export.Exporter) error
}

// Theme holds message prefixes applied to Info output.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithClipboard enables the "copy" action.
func WithClipboard(exporter export.Exporter) Option {
	return func(r *Runner) {
		r.clipboard = exporter
	}
}

// WithDownload enables the "save" action.
func WithDownload(exporter export.Exporter, location string) Option {
	return func(r *Runner) {
		r.download = exporter
		r.downloadLocation = location
	}
}

// WithMultiline decides which placeholders get a multi-line editor. The
// default treats names such as body, content or message as multi-line.
func WithMultiline(fn func(name string) bool) Option {
	return func(r *Runner) {
		if fn != nil {
			r.multiline = fn
		}
	}
}

// WithEditor edits multi-line values in $VISUAL or $EDITOR instead of the
// inline multi-line prompt.
func WithEditor(enabled bool) Option {
	return func(r *Runner) {
		r.editor = enabled
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// Runner drives the interactive flow.
type Runner struct {
	driver           PromptDriver
	clipboard        export.Exporter
	download         export.Exporter
	downloadLocation string
	multiline        func(string) bool
	editor           bool
	theme            Theme
}

// New constructs a Runner. Without WithPromptDriver a survey driver writing to
// stdout is used.
func New(options ...Option) (*Runner, error) {
	r := &Runner{
		multiline: DefaultMultiline,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// DefaultMultiline reports whether name looks like a long-form field.
func DefaultMultiline(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range []string{"body", "content", "message", "description", "html", "notes"} {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// Fill prompts for every placeholder of the current template, offering the
// current value as default.
func (r *Runner) Fill(ctx context.Context, ws Workspace) error {
	current := ws.Session()
	if !current.Loaded() {
		return ErrNoTemplate
	}

	names := current.Placeholders()
	if len(names) == 0 {
		return r.info(ctx, "Template has no placeholders.")
	}

	pattern := editorPattern(current.Source())
	for _, name := range names {
		value, err := r.ask(ctx, name, current.Value(name), pattern)
		if err != nil {
			return err
		}
		if err := ws.Set(name, value); err != nil {
			return fmt.Errorf("tui: set %s: %w", name, err)
		}
	}
	return nil
}

func (r *Runner) ask(ctx context.Context, name, current, pattern string) (string, error) {
	help := "Replaces {{" + name + "}} everywhere in the template."
	if r.multiline(name) {
		return r.driver.TextArea(ctx, TextAreaConfig{
			Message:  name,
			Default:  current,
			Help:     help,
			Editor:   r.editor,
			FileName: pattern,
		})
	}
	return r.driver.Input(ctx, InputConfig{
		Message: name,
		Default: current,
		Help:    help,
	})
}

// editorPattern names the editor temp file after the template's extension.
func editorPattern(source string) string {
	if ext := path.Ext(source); ext != "" && !strings.ContainsAny(ext, "?#/") {
		return "*" + ext
	}
	return "*.txt"
}

type action string

const (
	actionCopy action = "Copy to clipboard"
	actionSave action = "Save output.html"
	actionEdit action = "Edit values"
	actionQuit action = "Quit"
)

// Run fills the form, renders and then loops on the action menu until the
// user quits. Render and export failures are shown and the loop continues.
func (r *Runner) Run(ctx context.Context, ws Workspace) error {
	if err := r.Fill(ctx, ws); err != nil {
		return err
	}

	for {
		rendered := r.preview(ctx, ws)

		actions := r.actions(rendered)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message: "Next",
			Options: actionLabels(actions),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(actions) {
			return fmt.Errorf("tui: invalid selection %d", idx)
		}

		switch actions[idx] {
		case actionQuit:
			return nil
		case actionEdit:
			if err := r.Fill(ctx, ws); err != nil {
				return err
			}
		case actionCopy:
			r.export(ctx, ws, r.clipboard, "Copied to clipboard.")
		case actionSave:
			r.export(ctx, ws, r.download, "Saved "+r.downloadLocation)
		}
	}
}

func (r *Runner) preview(ctx context.Context, ws Workspace) bool {
	result, err := ws.Render(ctx)
	if err != nil {
		_ = r.fail(ctx, err)
		return false
	}
	if result.FormatErr != nil {
		_ = r.fail(ctx, result.FormatErr)
	}
	_ = r.info(ctx, result.Display)
	return true
}

func (r *Runner) actions(rendered bool) []action {
	var out []action
	if rendered && r.clipboard != nil {
		out = append(out, actionCopy)
	}
	if rendered && r.download != nil {
		out = append(out, actionSave)
	}
	return append(out, actionEdit, actionQuit)
}

func (r *Runner) export(ctx context.Context, ws Workspace, exporter export.Exporter, done string) {
	if err := ws.Export(ctx, exporter); err != nil {
		_ = r.fail(ctx, err)
		return
	}
	_ = r.info(ctx, done)
}

func (r *Runner) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Runner) fail(ctx context.Context, err error) error {
	var compileErr *render.CompilationError
	prefix := r.theme.ErrorPrefix
	if errors.As(err, &compileErr) {
		prefix += "Template error: "
	}
	return r.driver.Info(ctx, prefix+err.Error())
}

func actionLabels(actions []action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}
