package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
)

// ErrClipboardLimit is returned when content exceeds the configured
// clipboard size limit. Terminals silently drop oversized OSC52 payloads.
var ErrClipboardLimit = errors.New("content exceeds clipboard limit")

// ClipboardOption configures the OSC52 clipboard exporter.
type ClipboardOption func(*Clipboard)

// WithMode selects the terminal multiplexer wrapping.
func WithMode(mode osc52.Mode) ClipboardOption {
	return func(c *Clipboard) {
		c.mode = mode
	}
}

// WithPrimary targets the primary selection instead of the system clipboard.
func WithPrimary() ClipboardOption {
	return func(c *Clipboard) {
		c.primary = true
	}
}

// WithLimit caps the number of bytes copied. Zero disables the limit.
func WithLimit(limit int) ClipboardOption {
	return func(c *Clipboard) {
		c.limit = limit
	}
}

// Clipboard copies content into the terminal clipboard by writing an OSC52
// escape sequence to the terminal.
type Clipboard struct {
	out     io.Writer
	mode    osc52.Mode
	primary bool
	limit   int
}

// NewClipboard returns a clipboard exporter writing to out, normally
// os.Stderr so the sequence does not end up in redirected output.
func NewClipboard(out io.Writer, opts ...ClipboardOption) *Clipboard {
	c := &Clipboard{out: out, mode: osc52.DefaultMode}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// DetectMode picks the OSC52 mode for the current terminal from its
// environment.
func DetectMode(getenv func(string) string) osc52.Mode {
	if getenv == nil {
		return osc52.DefaultMode
	}
	if getenv("TMUX") != "" {
		return osc52.TmuxMode
	}
	if strings.HasPrefix(getenv("TERM"), "screen") {
		return osc52.ScreenMode
	}
	return osc52.DefaultMode
}

// Sequence builds the escape sequence for content.
func (c *Clipboard) Sequence(content string) osc52.Sequence {
	seq := osc52.New(content).Mode(c.mode)
	if c.primary {
		seq = seq.Primary()
	}
	return seq
}

// Export implements Exporter.
func (c *Clipboard) Export(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return wrap("clipboard", err)
	}
	if c == nil || c.out == nil {
		return wrap("clipboard", errors.New("terminal writer is nil"))
	}
	if c.limit > 0 && len(content) > c.limit {
		return wrap("clipboard", fmt.Errorf("%w (%d > %d bytes)", ErrClipboardLimit, len(content), c.limit))
	}
	if _, err := c.Sequence(content).WriteTo(c.out); err != nil {
		return wrap("clipboard", err)
	}
	return nil
}
