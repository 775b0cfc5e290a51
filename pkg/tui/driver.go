package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a single-line value prompt.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// TextAreaConfig describes a multi-line value prompt. With Editor set the
// value is edited in $VISUAL or $EDITOR, in a temp file matching FileName
// (for example "*.html") so the editor picks the right syntax mode.
type TextAreaConfig struct {
	Message  string
	Default  string
	Help     string
	Editor   bool
	FileName string
}

// SelectConfig describes the action menu.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	PageSize     int
}

// PromptDriver abstracts the terminal so the flow can be tested without one.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

// NewSurveyDriver returns a PromptDriver backed by survey. Info messages go
// to out, or stdout when out is nil.
func NewSurveyDriver(out io.Writer, opts ...survey.AskOpt) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out, opts: opts}
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var value string
	err := d.ask(ctx, &survey.Input{
		Message: cfg.Message,
		Help:    cfg.Help,
		Default: cfg.Default,
	}, &value)
	return value, err
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var (
		value  string
		prompt survey.Prompt
	)
	if cfg.Editor {
		prompt = &survey.Editor{
			Message:       cfg.Message,
			Help:          cfg.Help,
			Default:       cfg.Default,
			FileName:      cfg.FileName,
			HideDefault:   true,
			AppendDefault: true,
		}
	} else {
		prompt = &survey.Multiline{
			Message: cfg.Message,
			Help:    cfg.Help,
			Default: cfg.Default,
		}
	}
	err := d.ask(ctx, prompt, &value)
	return value, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{
		Message: cfg.Message,
		Options: cfg.Options,
	}
	if cfg.PageSize > 0 {
		prompt.PageSize = cfg.PageSize
	}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	var idx int
	if err := d.ask(ctx, prompt, &idx); err != nil {
		return -1, err
	}
	return idx, nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func (d *surveyDriver) ask(ctx context.Context, prompt survey.Prompt, response any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := survey.AskOne(prompt, response, d.opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrAborted
		}
		return err
	}
	return nil
}
