package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"

	"github.com/goliatone/go-tplform"
	"github.com/goliatone/go-tplform/pkg/document"
	"github.com/goliatone/go-tplform/pkg/export"
	"github.com/goliatone/go-tplform/pkg/form"
	"github.com/goliatone/go-tplform/pkg/format"
	"github.com/goliatone/go-tplform/pkg/logging"
	"github.com/goliatone/go-tplform/pkg/orchestrator"
	"github.com/goliatone/go-tplform/pkg/render"
	rendertemplate "github.com/goliatone/go-tplform/pkg/render/template"
	"github.com/goliatone/go-tplform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-tplform/pkg/render/template/plain"
	"github.com/goliatone/go-tplform/pkg/server"
	"github.com/goliatone/go-tplform/pkg/session"
	"github.com/goliatone/go-tplform/pkg/tui"
	"github.com/goliatone/go-tplform/pkg/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			// flag has already reported its own parse errors.
			if err != errUsage {
				fmt.Fprintln(os.Stderr, err)
			}
			os.Exit(2)
		}
		log.Fatalf("tplform: %v", err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	zl, err := logging.NewZapLogger(opts.debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := logging.NewZap(zl)

	orch, err := newOrchestrator(opts, logger)
	if err != nil {
		return err
	}

	if opts.serve != "" {
		return serve(ctx, opts, orch, logger)
	}

	values, err := loadValues(opts)
	if err != nil {
		return err
	}

	src, err := templateSource(opts, stdin)
	if err != nil {
		return err
	}

	switch {
	case opts.inspect:
		return inspect(ctx, orch, src, stdout)
	case opts.interactive:
		return interactive(ctx, opts, orch, src, values, logger)
	case opts.watch:
		return watchTemplate(ctx, opts, orch, src, values, stdout, stderr, logger)
	}

	out, err := orch.Generate(ctx, orchestrator.Request{
		Source:        src,
		Values:        values,
		Dialect:       opts.dialect,
		RejectUnknown: opts.strict,
	})
	if err != nil {
		return err
	}
	return emit(ctx, opts, out.Result, stdout, stderr)
}

func newOrchestrator(opts options, logger logging.Logger) (*orchestrator.Orchestrator, error) {
	compiler, err := newCompiler(opts)
	if err != nil {
		return nil, err
	}

	var htmlOpts []format.HTMLOption
	if opts.sanitize {
		htmlOpts = append(htmlOpts, format.WithUGCSanitizer())
	}

	loaderOpts := []document.LoaderOption{document.WithHTTPFallback(opts.timeout)}
	if opts.example != "" {
		loaderOpts = append(loaderOpts, document.WithFileSystem(tplform.ExampleTemplates()))
	}

	return orchestrator.New(
		orchestrator.WithLoader(tplform.NewLoader(loaderOpts...)),
		orchestrator.WithCompiler(compiler),
		orchestrator.WithFormatters(format.Defaults(htmlOpts...)),
		orchestrator.WithLogger(logger),
	), nil
}

func newCompiler(opts options) (rendertemplate.Compiler, error) {
	if opts.engine == "plain" {
		return plain.New(plain.WithEscapeHTML(opts.escape)), nil
	}
	engineOpts := []gotemplate.Option{gotemplate.WithAutoescape(opts.escape)}
	if len(opts.globals) > 0 {
		globals := make(map[string]any, len(opts.globals))
		for k, v := range opts.globals {
			globals[k] = v
		}
		engineOpts = append(engineOpts, gotemplate.WithGlobalData(globals))
	}
	if opts.template != "" && opts.template != "-" && !isURL(opts.template) {
		engineOpts = append(engineOpts, gotemplate.WithBaseDir(filepath.Dir(opts.template)))
	}
	if opts.serve != "" {
		// uploads must not reach the local filesystem, even with -template set
		engineOpts = append(engineOpts, gotemplate.WithBannedTags("include", "extends", "import", "ssi"))
	}
	return gotemplate.New(engineOpts...)
}

func loadValues(opts options) (map[string]string, error) {
	values := map[string]string{}
	if opts.valuesFile != "" {
		f, err := os.Open(opts.valuesFile)
		if err != nil {
			return nil, fmt.Errorf("open values: %w", err)
		}
		defer f.Close()
		loaded, err := form.LoadValues(f)
		if err != nil {
			return nil, fmt.Errorf("read values %s: %w", opts.valuesFile, err)
		}
		for k, v := range loaded {
			values[k] = v
		}
	}
	for k, v := range opts.sets {
		values[k] = v
	}
	return values, nil
}

func templateSource(opts options, stdin io.Reader) (document.Source, error) {
	if opts.example != "" {
		return document.SourceFromFS(opts.example), nil
	}
	src, err := document.ParseSource(opts.template, stdin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return src, nil
}

func inspect(ctx context.Context, orch *orchestrator.Orchestrator, src document.Source, stdout io.Writer) error {
	_, names, err := orch.Inspect(ctx, orchestrator.Request{Source: src})
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

func interactive(ctx context.Context, opts options, orch *orchestrator.Orchestrator, src document.Source, values map[string]string, logger logging.Logger) error {
	ctrl, err := tplform.NewController(orch, orch.DialectFor(opts.dialect, src.Location()), session.WithLogger(logger))
	if err != nil {
		return err
	}
	if _, err := ctrl.Load(ctx, src); err != nil {
		return err
	}
	ctrl.Merge(values)

	runnerOpts := []tui.Option{
		tui.WithPromptDriver(tui.NewSurveyDriver(os.Stderr, survey.WithStdio(os.Stdin, os.Stderr, os.Stderr))),
		tui.WithClipboard(newClipboard()),
		tui.WithEditor(os.Getenv("VISUAL") != "" || os.Getenv("EDITOR") != ""),
	}
	dir := opts.outputDir
	if dir == "" {
		dir = "."
	}
	file := export.NewFile(dir)
	runnerOpts = append(runnerOpts, tui.WithDownload(file, file.Path()))

	runner, err := tui.New(runnerOpts...)
	if err != nil {
		return err
	}
	if err := runner.Run(ctx, ctrl); err != nil && !errors.Is(err, tui.ErrAborted) {
		return err
	}
	return nil
}

func watchTemplate(ctx context.Context, opts options, orch *orchestrator.Orchestrator, src document.Source, values map[string]string, stdout, stderr io.Writer, logger logging.Logger) error {
	ctrl, err := tplform.NewController(orch, orch.DialectFor(opts.dialect, src.Location()), session.WithLogger(logger))
	if err != nil {
		return err
	}

	renderAndEmit := func() {
		ctrl.Merge(values)
		result, err := ctrl.Render(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "render failed: %v\n", err)
			return
		}
		if err := emit(ctx, opts, result, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "export failed: %v\n", err)
		}
	}

	if _, err := ctrl.Load(ctx, src); err != nil {
		return err
	}
	renderAndEmit()

	w, err := watch.New(src.Location(), ctrl,
		watch.WithLogger(logger),
		watch.WithOnReload(func(_ session.Session, err error) {
			if err != nil {
				fmt.Fprintf(stderr, "reload failed: %v\n", err)
				return
			}
			renderAndEmit()
		}),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	logger.Info("watching template", "path", w.Path())
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serve(ctx context.Context, opts options, orch *orchestrator.Orchestrator, logger logging.Logger) error {
	dialect := opts.dialect
	if dialect == "" {
		dialect = render.DialectHTML
	}
	factory := func(n session.Notifier) (*session.Controller, error) {
		return tplform.NewController(orch, dialect,
			session.WithLogger(logger),
			session.WithNotifier(session.Notifiers(n, session.LogNotifier(logger))),
		)
	}
	srv, err := server.New(factory, server.WithLogger(logger))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              opts.serve,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving template form", "addr", opts.serve)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// emit writes the result to stdout and to any requested export targets.
// Exports always carry the raw output; -preview only changes what is printed.
func emit(ctx context.Context, opts options, result render.Result, stdout, stderr io.Writer) error {
	printed := result.Raw
	if opts.preview {
		printed = result.Display
		if result.FormatErr != nil {
			fmt.Fprintf(stderr, "preview formatting failed, showing raw output: %v\n", result.FormatErr)
		}
	}

	exporters := []export.Exporter{export.NewWriter(stdout)}
	if opts.outputDir != "" {
		exporters = append(exporters, export.NewFile(opts.outputDir))
	}
	if opts.copy {
		exporters = append(exporters, newClipboard())
	}

	if err := exporters[0].Export(ctx, printed); err != nil {
		return err
	}
	if len(exporters) == 1 {
		return nil
	}
	if err := export.Multi(exporters[1:]...).Export(ctx, result.Export()); err != nil {
		return err
	}
	if opts.outputDir != "" {
		fmt.Fprintf(stderr, "Output written to %s\n", filepath.Join(opts.outputDir, export.DownloadFilename))
	}
	return nil
}

func newClipboard() *export.Clipboard {
	return export.NewClipboard(os.Stderr, export.WithMode(export.DetectMode(os.Getenv)))
}

func isURL(raw string) bool {
	src, err := document.ParseSource(raw, nil)
	return err == nil && src.Kind() == document.SourceKindURL
}
