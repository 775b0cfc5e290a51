package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-tplform/pkg/form"
	"github.com/goliatone/go-tplform/pkg/render"
)

// assignments collects repeated -set name=value flags.
type assignments map[string]string

func (a assignments) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+a[k])
	}
	return strings.Join(parts, ",")
}

func (a assignments) Set(raw string) error {
	name, value, err := form.ParseAssignment(raw)
	if err != nil {
		return err
	}
	a[name] = value
	return nil
}

type options struct {
	template    string
	example     string
	valuesFile  string
	sets        assignments
	globals     assignments
	dialect     render.Dialect
	engine      string
	interactive bool
	preview     bool
	outputDir   string
	copy        bool
	inspect     bool
	strict      bool
	escape      bool
	sanitize    bool
	watch       bool
	serve       string
	timeout     time.Duration
	debug       bool
}

var errUsage = errors.New("usage")

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{sets: assignments{}, globals: assignments{}}

	fs := flag.NewFlagSet("tplform-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dialect string
	fs.StringVar(&opts.template, "template", "", "template path, http(s) URL, or - for stdin")
	fs.StringVar(&opts.example, "example", "", "render a bundled example template by name")
	fs.StringVar(&opts.valuesFile, "values", "", "YAML or JSON file with placeholder values")
	fs.Var(opts.sets, "set", "placeholder value as name=value (repeatable)")
	fs.StringVar(&dialect, "dialect", "", "output dialect: html, json, yaml or text (default: from template name)")
	fs.Var(opts.globals, "global", "value visible to template tags, for example env=prod (repeatable)")
	fs.StringVar(&opts.engine, "engine", "pongo2", "template engine: pongo2 (tags and filters) or plain (placeholders only)")
	fs.BoolVar(&opts.interactive, "interactive", false, "prompt for each placeholder in the terminal")
	fs.BoolVar(&opts.preview, "preview", false, "print the formatted preview instead of the raw output")
	fs.StringVar(&opts.outputDir, "output", "", "directory to write output.html into")
	fs.BoolVar(&opts.copy, "copy", false, "copy the raw output to the terminal clipboard (OSC52)")
	fs.BoolVar(&opts.inspect, "inspect", false, "list the template placeholders and exit")
	fs.BoolVar(&opts.strict, "strict", false, "fail when values name unknown placeholders")
	fs.BoolVar(&opts.escape, "escape", true, "HTML-escape substituted values")
	fs.BoolVar(&opts.sanitize, "sanitize", false, "sanitize the HTML preview with a UGC policy")
	fs.BoolVar(&opts.watch, "watch", false, "re-render whenever the template file changes")
	fs.StringVar(&opts.serve, "serve", "", "serve the web form on this address (for example :8080)")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout for fetching remote templates")
	fs.BoolVar(&opts.debug, "debug", false, "enable development logging")

	if err := fs.Parse(args); err != nil {
		return options{}, errUsage
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	if dialect != "" {
		parsed, err := render.ParseDialect(dialect)
		if err != nil {
			return options{}, fmt.Errorf("%w: %v", errUsage, err)
		}
		opts.dialect = parsed
	}

	switch opts.engine {
	case "pongo2":
	case "plain":
		if len(opts.globals) > 0 {
			return options{}, fmt.Errorf("%w: -global needs the pongo2 engine", errUsage)
		}
	default:
		return options{}, fmt.Errorf("%w: unknown engine %q", errUsage, opts.engine)
	}

	switch {
	case opts.serve != "":
		if opts.interactive || opts.watch || opts.inspect {
			return options{}, fmt.Errorf("%w: -serve cannot be combined with -interactive, -watch or -inspect", errUsage)
		}
	case opts.template == "" && opts.example == "":
		return options{}, fmt.Errorf("%w: -template or -example is required", errUsage)
	case opts.template != "" && opts.example != "":
		return options{}, fmt.Errorf("%w: use either -template or -example", errUsage)
	case opts.interactive && opts.template == "-":
		return options{}, fmt.Errorf("%w: -interactive needs stdin for prompts; pass the template as a file", errUsage)
	case opts.watch && (opts.template == "" || opts.template == "-" || strings.Contains(opts.template, "://")):
		return options{}, fmt.Errorf("%w: -watch needs a template file path", errUsage)
	case opts.watch && opts.interactive:
		return options{}, fmt.Errorf("%w: -watch cannot be combined with -interactive", errUsage)
	}
	return opts, nil
}
