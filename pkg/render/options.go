package render

import (
	"github.com/goliatone/go-tplform/pkg/logging"
	rendertemplate "github.com/goliatone/go-tplform/pkg/render/template"
)

// Option configures a Renderer.
type Option func(*config)

type config struct {
	compiler   rendertemplate.Compiler
	formatters *Registry
	dialect    Dialect
	format     bool
	logger     logging.Logger
}

// WithCompiler injects the template-compilation capability.
func WithCompiler(compiler rendertemplate.Compiler) Option {
	return func(cfg *config) {
		if compiler != nil {
			cfg.compiler = compiler
		}
	}
}

// WithFormatters supplies the registry of display formatters keyed by
// dialect.
func WithFormatters(registry *Registry) Option {
	return func(cfg *config) {
		cfg.formatters = registry
	}
}

// WithDialect selects the markup dialect used for display formatting.
func WithDialect(dialect Dialect) Option {
	return func(cfg *config) {
		if dialect != "" {
			cfg.dialect = dialect
		}
	}
}

// WithFormatting toggles the display formatting pass that runs after every
// successful render. Format can still be called explicitly when disabled.
func WithFormatting(enabled bool) Option {
	return func(cfg *config) {
		cfg.format = enabled
	}
}

// WithLogger routes non-fatal failures (formatting errors) to logger.
func WithLogger(logger logging.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}
