package render_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-tplform/pkg/render"
)

func TestErrorTypesUnwrap(t *testing.T) {
	cause := errors.New("cause")

	cases := []error{
		&render.CompilationError{Err: cause},
		&render.ExecutionError{Err: cause},
		&render.FormattingError{Dialect: render.DialectHTML, Err: cause},
	}
	for _, err := range cases {
		if !errors.Is(err, cause) {
			t.Fatalf("%T does not unwrap to its cause", err)
		}
		if err.Error() == "" {
			t.Fatalf("%T has empty message", err)
		}
	}
}
