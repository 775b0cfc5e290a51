// Package plain implements a token-only template compiler: every `{{name}}`
// placeholder is replaced by its value and nothing else is interpreted. It is
// the engine to pick when uploaded templates must not run tags or filters.
package plain

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-tplform/pkg/placeholder"
	"github.com/goliatone/go-tplform/pkg/render/template"
)

// SyntaxError reports a stray brace sequence that is not a placeholder token.
type SyntaxError struct {
	Offset int
	Near   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("plain: malformed placeholder at offset %d near %q", e.Offset, e.Near)
}

// Option configures the compiler.
type Option func(*Compiler)

// WithEscapeHTML escapes substituted values for HTML output.
func WithEscapeHTML(enabled bool) Option {
	return func(c *Compiler) {
		c.escape = enabled
	}
}

// WithLenient accepts stray `{{`/`}}` sequences and leaves them as literal
// text instead of failing compilation.
func WithLenient(enabled bool) Option {
	return func(c *Compiler) {
		c.lenient = enabled
	}
}

// Compiler substitutes placeholder tokens only.
type Compiler struct {
	escape  bool
	lenient bool
}

var _ template.Compiler = (*Compiler)(nil)

// New returns a strict compiler that does not escape values.
func New(options ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Compile splits source into literal and placeholder segments.
func (c *Compiler) Compile(source string) (template.Executable, error) {
	occurrences := placeholder.Occurrences(source)

	var (
		segments []segment
		cursor   int
	)
	for _, occ := range occurrences {
		literal := source[cursor:occ.Start]
		if !c.lenient {
			if err := checkLiteral(literal, cursor); err != nil {
				return nil, err
			}
		}
		if literal != "" {
			segments = append(segments, segment{text: literal})
		}
		segments = append(segments, segment{name: occ.Name, isVar: true})
		cursor = occ.End
	}
	tail := source[cursor:]
	if !c.lenient {
		if err := checkLiteral(tail, cursor); err != nil {
			return nil, err
		}
	}
	if tail != "" {
		segments = append(segments, segment{text: tail})
	}

	return &compiled{segments: segments, escape: c.escape}, nil
}

type segment struct {
	text  string
	name  string
	isVar bool
}

type compiled struct {
	segments []segment
	escape   bool
}

func (c *compiled) Execute(context map[string]any) (string, error) {
	var b strings.Builder
	for _, seg := range c.segments {
		if !seg.isVar {
			b.WriteString(seg.text)
			continue
		}
		value, ok := context[seg.name]
		if !ok || value == nil {
			continue
		}
		text := fmt.Sprint(value)
		if c.escape {
			text = html.EscapeString(text)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func checkLiteral(literal string, base int) error {
	for _, marker := range []string{"{{", "}}"} {
		if idx := strings.Index(literal, marker); idx >= 0 {
			end := idx + 12
			if end > len(literal) {
				end = len(literal)
			}
			return &SyntaxError{Offset: base + idx, Near: literal[idx:end]}
		}
	}
	return nil
}
