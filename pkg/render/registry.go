package render

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores display formatters by dialect.
type Registry struct {
	mu         sync.RWMutex
	formatters map[Dialect]Formatter
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[Dialect]Formatter),
	}
}

// Register adds a formatter for dialect. Duplicate dialects return an error.
func (r *Registry) Register(dialect Dialect, formatter Formatter) error {
	if formatter == nil {
		return fmt.Errorf("render: formatter is required")
	}
	if dialect == "" {
		return fmt.Errorf("render: formatter dialect is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[dialect]; exists {
		return fmt.Errorf("render: formatter for %q already registered", dialect)
	}

	r.formatters[dialect] = formatter
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(dialect Dialect, formatter Formatter) {
	if err := r.Register(dialect, formatter); err != nil {
		panic(err)
	}
}

// Get retrieves the formatter for dialect.
func (r *Registry) Get(dialect Dialect) (Formatter, error) {
	formatter, ok := r.Lookup(dialect)
	if !ok {
		return nil, fmt.Errorf("render: no formatter for %q", dialect)
	}
	return formatter, nil
}

// Lookup is Get without the error. A nil registry has no formatters.
func (r *Registry) Lookup(dialect Dialect) (Formatter, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	formatter, ok := r.formatters[dialect]
	return formatter, ok
}

// List returns the registered dialects, sorted.
func (r *Registry) List() []Dialect {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dialects := make([]Dialect, 0, len(r.formatters))
	for dialect := range r.formatters {
		dialects = append(dialects, dialect)
	}
	sort.Slice(dialects, func(i, j int) bool { return dialects[i] < dialects[j] })
	return dialects
}

// Has reports whether a formatter is registered for dialect.
func (r *Registry) Has(dialect Dialect) bool {
	_, ok := r.Lookup(dialect)
	return ok
}
