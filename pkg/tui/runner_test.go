package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tplform/pkg/export"
	"github.com/goliatone/go-tplform/pkg/form"
	"github.com/goliatone/go-tplform/pkg/render"
	"github.com/goliatone/go-tplform/pkg/session"
)

type stubDriver struct {
	inputs       []string
	textAreas    []string
	selectIdx    []int
	infoMessages []string
	prompts      []string
	options      [][]string
	inputPos     int
	textPos      int
	selectPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, "input:"+cfg.Message+"="+cfg.Default)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	prompt := "textarea:" + cfg.Message
	if cfg.Editor {
		prompt += " editor:" + cfg.FileName
	}
	s.prompts = append(s.prompts, prompt)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.options = append(s.options, cfg.Options)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newWorkspace(t *testing.T, name, template string) *session.Controller {
	t.Helper()
	r, err := render.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	ctrl, err := session.NewController(r)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	ctrl.Upload(name, template)
	return ctrl
}

func TestFill_PromptsEveryPlaceholderInOrder(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "Hi"},
		textAreas: []string{"Long text"},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	ws := newWorkspace(t, "", "{{name}} {{greeting}} {{body}} {{name}}")
	if err := r.Fill(context.Background(), ws); err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := []string{"input:name=", "input:greeting=", "textarea:body"}
	if diff := cmp.Diff(want, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	got := ws.Session().Form().Values()
	if diff := cmp.Diff(map[string]string{"name": "Ada", "greeting": "Hi", "body": "Long text"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_NoTemplate(t *testing.T) {
	r, _ := New(WithPromptDriver(&stubDriver{}))
	ctrl, _ := session.NewController(&fakeRenderer{})
	if err := r.Fill(context.Background(), ctrl); !errors.Is(err, ErrNoTemplate) {
		t.Fatalf("expected ErrNoTemplate, got %v", err)
	}
}

func TestFill_NoPlaceholders(t *testing.T) {
	driver := &stubDriver{}
	r, _ := New(WithPromptDriver(driver))
	if err := r.Fill(context.Background(), newWorkspace(t, "", "static")); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(driver.infoMessages) != 1 {
		t.Fatalf("expected a single info message, got %v", driver.infoMessages)
	}
}

func TestRun_PreviewCopyQuit(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"World"},
		selectIdx: []int{0, 2}, // copy, then quit
	}
	var clip bytes.Buffer
	r, _ := New(
		WithPromptDriver(driver),
		WithClipboard(export.NewWriter(&clip)),
		WithTheme(Theme{ErrorPrefix: "! "}),
	)

	if err := r.Run(context.Background(), newWorkspace(t, "", "Hello {{name}}!")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if clip.String() != "Hello World!" {
		t.Fatalf("unexpected clipboard %q", clip.String())
	}
	if diff := cmp.Diff([]string{"Copy to clipboard", "Edit values", "Quit"}, driver.options[0]); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
	if !contains(driver.infoMessages, "Hello World!") || !contains(driver.infoMessages, "Copied to clipboard.") {
		t.Fatalf("unexpected info messages %v", driver.infoMessages)
	}
}

func TestRun_CompileFailureOffersOnlyEditAndQuit(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"x"},
		selectIdx: []int{1},
	}
	var clip bytes.Buffer
	r, _ := New(WithPromptDriver(driver), WithClipboard(export.NewWriter(&clip)))

	ws := newWorkspace(t, "", "{{a}} {{b")
	if err := r.Run(context.Background(), ws); err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"Edit values", "Quit"}, driver.options[0]); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
	found := false
	for _, msg := range driver.infoMessages {
		if strings.HasPrefix(msg, "Template error: ") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected template error message, got %v", driver.infoMessages)
	}
	if clip.Len() != 0 {
		t.Fatal("nothing should be exported")
	}
}

func TestRun_AbortPropagates(t *testing.T) {
	driver := &abortingDriver{stubDriver: &stubDriver{}}
	r, _ := New(WithPromptDriver(driver))
	if err := r.Run(context.Background(), newWorkspace(t, "", "{{a}}")); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestDefaultMultiline(t *testing.T) {
	for name, want := range map[string]bool{
		"body":         true,
		"email_body":   true,
		"MessageText":  true,
		"name":         false,
		"total_amount": false,
	} {
		if got := DefaultMultiline(name); got != want {
			t.Fatalf("DefaultMultiline(%q) = %v, want %v", name, got, want)
		}
	}
}

type abortingDriver struct {
	*stubDriver
}

func (a *abortingDriver) Input(context.Context, InputConfig) (string, error) {
	return "", ErrAborted
}

type fakeRenderer struct{}

func (fakeRenderer) Render(context.Context, string, form.Data) (render.Result, error) {
	return render.Result{}, nil
}

func (fakeRenderer) Format(_ context.Context, r render.Result) render.Result {
	return r
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func TestFill_EditorUsesTemplateExtension(t *testing.T) {
	driver := &stubDriver{textAreas: []string{"<p>hi</p>"}}
	r, err := New(WithPromptDriver(driver), WithEditor(true))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	if err := r.Fill(context.Background(), newWorkspace(t, "mail.html", "{{body}}")); err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := []string{"textarea:body editor:*.html"}
	if diff := cmp.Diff(want, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
}
