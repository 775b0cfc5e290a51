// Package template defines the compile-and-execute capability the render
// pipeline delegates substitution to. Concrete engines live in sub-packages
// (gotemplate for pongo2, plain for token-only substitution).
package template
