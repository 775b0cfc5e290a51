package template

// Compiler turns raw template text into an executable substitution function.
// Compile returns an error when the engine rejects the template syntax.
type Compiler interface {
	Compile(source string) (Executable, error)
}

// Executable substitutes a string-keyed context into a compiled template.
// Names referenced by the template but missing from the context render as an
// empty string.
type Executable interface {
	Execute(context map[string]any) (string, error)
}

// CompilerFunc adapts a function into a Compiler.
type CompilerFunc func(source string) (Executable, error)

// Compile implements Compiler.
func (fn CompilerFunc) Compile(source string) (Executable, error) {
	return fn(source)
}

// ExecutableFunc adapts a function into an Executable.
type ExecutableFunc func(context map[string]any) (string, error)

// Execute implements Executable.
func (fn ExecutableFunc) Execute(context map[string]any) (string, error) {
	return fn(context)
}
