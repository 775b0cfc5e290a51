package placeholder_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tplform/pkg/placeholder"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     placeholder.Set
	}{
		{name: "empty", template: "", want: placeholder.Set{}},
		{name: "no placeholders", template: "no placeholders here", want: placeholder.Set{}},
		{name: "dedup keeps first position", template: "{{a}}-{{b}}-{{a}}", want: placeholder.Set{"a", "b"}},
		{name: "word characters", template: "<h1>{{Title_1}}</h1><p>{{body2}}</p>", want: placeholder.Set{"Title_1", "body2"}},
		{name: "whitespace inside braces", template: "{{ name }} {{name }} {{ name}}", want: placeholder.Set{}},
		{name: "dotted path", template: "{{user.name}}", want: placeholder.Set{}},
		{name: "block syntax", template: "{{#each items}}{{this}}{{/each}}", want: placeholder.Set{"this"}},
		{name: "helper call", template: "{{upper name}}", want: placeholder.Set{}},
		{name: "single brace", template: "{name} {{ok}", want: placeholder.Set{}},
		{name: "unmatched brace", template: "{{open and {{closed}}", want: placeholder.Set{"closed"}},
		{name: "triple braces", template: "{{{raw}}}", want: placeholder.Set{"raw"}},
		{name: "adjacent", template: "{{a}}{{b}}{{c}}{{b}}", want: placeholder.Set{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := placeholder.Extract(tt.template)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("extract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_OrderAndUniqueness(t *testing.T) {
	templates := []string{
		"{{z}} {{y}} {{x}} {{y}} {{z}}",
		"Dear {{name}}, your order {{order_id}} ships {{date}}. Thanks {{name}}!",
		"{{ spaced }} {{real}} {{a.b}} {{real}} {{}} {{_}}",
		strings.Repeat("{{loop}}", 50) + "{{tail}}",
	}

	for _, tmpl := range templates {
		got := placeholder.Extract(tmpl)

		seen := make(map[string]bool)
		for _, name := range got {
			if seen[name] {
				t.Fatalf("duplicate %q in %v", name, got)
			}
			seen[name] = true
			if !placeholder.Valid(name) {
				t.Fatalf("invalid name %q extracted from %q", name, tmpl)
			}
		}

		var firstSeen []string
		added := make(map[string]bool)
		for _, occ := range placeholder.Occurrences(tmpl) {
			if !added[occ.Name] {
				added[occ.Name] = true
				firstSeen = append(firstSeen, occ.Name)
			}
		}
		if diff := cmp.Diff(firstSeen, []string(got)); diff != "" {
			t.Fatalf("order mismatch for %q (-occurrences +extract):\n%s", tmpl, diff)
		}
	}
}

func TestOccurrences(t *testing.T) {
	text := "Hi {{name}}, bye {{name}}"
	got := placeholder.Occurrences(text)
	want := []placeholder.Occurrence{
		{Name: "name", Start: 3, End: 11},
		{Name: "name", Start: 17, End: 25},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("occurrences mismatch (-want +got):\n%s", diff)
	}
	for _, occ := range got {
		if text[occ.Start:occ.End] != "{{name}}" {
			t.Fatalf("offsets do not cover token: %q", text[occ.Start:occ.End])
		}
	}
	if placeholder.Occurrences("plain") != nil {
		t.Fatalf("expected nil occurrences for plain text")
	}
}

func TestSetHelpers(t *testing.T) {
	set := placeholder.Extract("{{a}} {{b}}")
	if set.Len() != 2 || !set.Contains("b") || set.Contains("c") {
		t.Fatalf("unexpected set helpers result for %v", set)
	}

	clone := set.Clone()
	clone[0] = "changed"
	if set[0] != "a" {
		t.Fatalf("clone shares backing array with original")
	}
}

func TestValid(t *testing.T) {
	for _, name := range []string{"a", "A1", "snake_case", "_", "123"} {
		if !placeholder.Valid(name) {
			t.Fatalf("expected %q to be valid", name)
		}
	}
	for _, name := range []string{"", "a b", "a.b", "#each", "a-b", "é"} {
		if placeholder.Valid(name) {
			t.Fatalf("expected %q to be invalid", name)
		}
	}
}
