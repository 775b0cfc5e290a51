package render

import "fmt"

// CompilationError reports that the template compiler rejected the template.
type CompilationError struct {
	Err error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("render: compile template: %v", e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// ExecutionError reports that a compiled template failed while substituting
// values.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("render: execute template: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// FormattingError reports a failed display formatting pass. The raw output
// is unaffected.
type FormattingError struct {
	Dialect Dialect
	Err     error
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("render: format %s output: %v", e.Dialect, e.Err)
}

func (e *FormattingError) Unwrap() error {
	return e.Err
}
