package placeholder

import "regexp"

var tokenPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

var namePattern = regexp.MustCompile(`^\w+$`)

// Set is the ordered list of distinct placeholder names found in a template.
// Order follows the first appearance of each name.
type Set []string

// Len reports the number of names in the set.
func (s Set) Len() int {
	return len(s)
}

// Contains reports whether name is a member of the set.
func (s Set) Contains(name string) bool {
	for _, candidate := range s {
		if candidate == name {
			return true
		}
	}
	return false
}

// Clone returns a copy that can be modified without touching s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	return append(Set(nil), s...)
}

// Occurrence locates a single placeholder token inside the template text.
// Start and End are byte offsets of the full `{{name}}` token.
type Occurrence struct {
	Name  string
	Start int
	End   int
}

// Extract returns the placeholder set for text. Malformed brace sequences are
// ignored; an empty or placeholder-free template yields an empty set.
func Extract(text string) Set {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return Set{}
	}

	out := make(Set, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		name := match[1]
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Occurrences returns every placeholder token in text, duplicates included,
// in the order they appear.
func Occurrences(text string) []Occurrence {
	indexes := tokenPattern.FindAllStringSubmatchIndex(text, -1)
	if len(indexes) == 0 {
		return nil
	}

	out := make([]Occurrence, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, Occurrence{
			Name:  text[idx[2]:idx[3]],
			Start: idx[0],
			End:   idx[1],
		})
	}
	return out
}

// Valid reports whether name satisfies the placeholder grammar.
func Valid(name string) bool {
	return namePattern.MatchString(name)
}
