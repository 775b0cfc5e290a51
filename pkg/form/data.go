// Package form holds the user-supplied value for each placeholder of the
// current template.
package form

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-tplform/pkg/placeholder"
)

// ErrUnknownField is returned when a caller sets a name that is not part of
// the current placeholder set.
var ErrUnknownField = errors.New("form: unknown field")

// Data maps placeholder names to their current string values. The zero value
// is an empty form. Data is a value type: every mutation returns a new Data
// and leaves the receiver untouched.
type Data struct {
	names  placeholder.Set
	values map[string]string
}

// Initialize builds a form with one empty entry per placeholder name.
func Initialize(set placeholder.Set) Data {
	values := make(map[string]string, len(set))
	for _, name := range set {
		values[name] = ""
	}
	return Data{
		names:  set.Clone(),
		values: values,
	}
}

// Set returns a copy of d with name updated to value. Unknown names return
// ErrUnknownField and the unchanged receiver.
func (d Data) Set(name, value string) (Data, error) {
	if _, ok := d.values[name]; !ok {
		return d, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	next := d.clone()
	next.values[name] = value
	return next, nil
}

// Merge applies every known key from values and returns the names that were
// ignored because they are not placeholders of this form.
func (d Data) Merge(values map[string]string) (Data, []string) {
	if len(values) == 0 {
		return d, nil
	}
	next := d.clone()
	var ignored []string
	for name, value := range values {
		if _, ok := next.values[name]; !ok {
			ignored = append(ignored, name)
			continue
		}
		next.values[name] = value
	}
	sortStrings(ignored)
	return next, ignored
}

// Get returns the value for name, or an empty string when the name is unset
// or unknown.
func (d Data) Get(name string) string {
	return d.values[name]
}

// Has reports whether name is a field of the form.
func (d Data) Has(name string) bool {
	_, ok := d.values[name]
	return ok
}

// Names returns the field names in placeholder order.
func (d Data) Names() placeholder.Set {
	return d.names.Clone()
}

// Len reports the number of fields.
func (d Data) Len() int {
	return len(d.names)
}

// Values returns a copy of the name to value mapping.
func (d Data) Values() map[string]string {
	out := make(map[string]string, len(d.values))
	for name, value := range d.values {
		out[name] = value
	}
	return out
}

// Context converts the form into the substitution context handed to a
// template compiler. Every field is present, defaulting to "".
func (d Data) Context() map[string]any {
	out := make(map[string]any, len(d.names))
	for _, name := range d.names {
		out[name] = d.values[name]
	}
	return out
}

func (d Data) clone() Data {
	values := make(map[string]string, len(d.values))
	for name, value := range d.values {
		values[name] = value
	}
	return Data{
		names:  d.names,
		values: values,
	}
}
