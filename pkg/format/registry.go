package format

import (
	"github.com/goliatone/go-tplform/pkg/render"
)

// Defaults returns a registry with the built-in formatter for every dialect.
// htmlOptions configure the HTML formatter.
func Defaults(htmlOptions ...HTMLOption) *render.Registry {
	registry := render.NewRegistry()
	registry.MustRegister(render.DialectHTML, NewHTML(htmlOptions...))
	registry.MustRegister(render.DialectJSON, NewJSON())
	registry.MustRegister(render.DialectYAML, NewYAML())
	registry.MustRegister(render.DialectText, NewText())
	return registry
}
