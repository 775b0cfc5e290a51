package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-tplform/pkg/render"
)

// HTMLOption configures the HTML formatter.
type HTMLOption func(*HTML)

// WithIndent sets the indentation unit. Defaults to two spaces.
func WithIndent(indent string) HTMLOption {
	return func(h *HTML) {
		h.indent = indent
	}
}

// WithSanitizer runs the preview through a bluemonday policy before pretty
// printing, so untrusted values cannot inject script into the preview.
func WithSanitizer(policy *bluemonday.Policy) HTMLOption {
	return func(h *HTML) {
		h.policy = policy
	}
}

// WithUGCSanitizer is WithSanitizer using bluemonday's user generated content
// policy.
func WithUGCSanitizer() HTMLOption {
	return func(h *HTML) {
		h.policy = ugcPolicy()
	}
}

// WithStrict fails formatting when elements are left unclosed or closing tags
// have no matching open element.
func WithStrict(enabled bool) HTMLOption {
	return func(h *HTML) {
		h.strict = enabled
	}
}

// HTML re-indents markup parsed with golang.org/x/net/html.
type HTML struct {
	indent string
	policy *bluemonday.Policy
	strict bool
}

var _ render.Formatter = (*HTML)(nil)

// NewHTML constructs the HTML formatter.
func NewHTML(options ...HTMLOption) *HTML {
	h := &HTML{indent: "  "}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// ErrUnbalancedMarkup is returned by strict formatting for mismatched tags.
var ErrUnbalancedMarkup = errors.New("format: unbalanced markup")

// Format implements render.Formatter.
func (h *HTML) Format(ctx context.Context, markup string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}
	if h.strict {
		if err := checkBalanced(markup); err != nil {
			return "", err
		}
	}
	if h.policy != nil {
		markup = h.policy.Sanitize(markup)
	}

	var (
		nodes []*html.Node
		err   error
	)
	if isDocument(markup) {
		var doc *html.Node
		doc, err = html.Parse(strings.NewReader(markup))
		if doc != nil {
			nodes = []*html.Node{doc}
		}
	} else {
		nodes, err = html.ParseFragment(strings.NewReader(markup), &html.Node{
			Type:     html.ElementNode,
			Data:     "body",
			DataAtom: atom.Body,
		})
	}
	if err != nil {
		return "", fmt.Errorf("format: parse html: %w", err)
	}

	var buf bytes.Buffer
	p := printer{w: &buf, indent: h.indent}
	for _, node := range nodes {
		p.node(node, 0)
	}
	if p.err != nil {
		return "", p.err
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

func isDocument(markup string) bool {
	head := strings.ToLower(strings.TrimSpace(markup))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype") || strings.Contains(head, "<html")
}

type printer struct {
	w      io.Writer
	indent string
	err    error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) pad(depth int) string {
	return strings.Repeat(p.indent, depth)
}

func (p *printer) node(n *html.Node, depth int) {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.node(c, depth)
		}
	case html.DoctypeNode:
		p.printf("%s<!DOCTYPE %s>\n", p.pad(depth), n.Data)
	case html.CommentNode:
		p.printf("%s<!--%s-->\n", p.pad(depth), n.Data)
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return
		}
		p.printf("%s%s\n", p.pad(depth), html.EscapeString(collapseSpace(text)))
	case html.ElementNode:
		p.element(n, depth)
	}
}

func (p *printer) element(n *html.Node, depth int) {
	p.printf("%s<%s%s>", p.pad(depth), n.Data, attributes(n))
	if voidElements[n.Data] {
		p.printf("\n")
		return
	}

	if preserveContent[n.Data] {
		var buf bytes.Buffer
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil && p.err == nil {
				p.err = err
			}
		}
		p.printf("%s</%s>\n", buf.String(), n.Data)
		return
	}

	if text, ok := inlineText(n); ok {
		p.printf("%s</%s>\n", html.EscapeString(text), n.Data)
		return
	}

	p.printf("\n")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.node(c, depth+1)
	}
	p.printf("%s</%s>\n", p.pad(depth), n.Data)
}

// inlineText reports whether n has no children or a single short text child
// that can stay on the same line as its tags.
func inlineText(n *html.Node) (string, bool) {
	if n.FirstChild == nil {
		return "", true
	}
	if n.FirstChild != n.LastChild || n.FirstChild.Type != html.TextNode {
		return "", false
	}
	text := collapseSpace(strings.TrimSpace(n.FirstChild.Data))
	if len(text) > 80 {
		return "", false
	}
	return text, true
}

func attributes(n *html.Node) string {
	if len(n.Attr) == 0 {
		return ""
	}
	var b strings.Builder
	for _, attr := range n.Attr {
		b.WriteByte(' ')
		if attr.Namespace != "" {
			b.WriteString(attr.Namespace)
			b.WriteByte(':')
		}
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Val))
		b.WriteByte('"')
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// checkBalanced walks the token stream and verifies every non-void element
// is closed in order. Elements whose end tag is optional are tolerated.
func checkBalanced(markup string) error {
	z := html.NewTokenizer(strings.NewReader(markup))
	var stack []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return fmt.Errorf("format: tokenize html: %w", err)
			}
			for i := len(stack) - 1; i >= 0; i-- {
				if !optionalEnd[stack[i]] {
					return fmt.Errorf("%w: <%s> is never closed", ErrUnbalancedMarkup, stack[i])
				}
			}
			return nil
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if !voidElements[tag] {
				stack = append(stack, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if voidElements[tag] {
				continue
			}
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top == tag {
					matched = true
					break
				}
				if !optionalEnd[top] {
					return fmt.Errorf("%w: </%s> closes <%s>", ErrUnbalancedMarkup, tag, top)
				}
			}
			if !matched {
				return fmt.Errorf("%w: </%s> has no open element", ErrUnbalancedMarkup, tag)
			}
		}
	}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

var optionalEnd = map[string]bool{
	"p": true, "li": true, "dt": true, "dd": true, "option": true,
	"optgroup": true, "tr": true, "td": true, "th": true, "thead": true,
	"tbody": true, "tfoot": true, "colgroup": true, "html": true,
	"head": true, "body": true,
}

var preserveContent = map[string]bool{
	"pre": true, "textarea": true, "script": true, "style": true,
}

var (
	ugcPolicyOnce sync.Once
	ugcPolicyVal  *bluemonday.Policy
)

func ugcPolicy() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		ugcPolicyVal = bluemonday.UGCPolicy()
	})
	return ugcPolicyVal
}
