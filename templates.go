package tplform

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed templates/*
var exampleTemplates embed.FS

// ExampleTemplates exposes the bundled sample templates, one per dialect.
// Load them with document.SourceFromFS and a loader built with
// document.WithFileSystem(ExampleTemplates()).
func ExampleTemplates() fs.FS {
	sub, err := fs.Sub(exampleTemplates, "templates")
	if err != nil {
		return exampleTemplates
	}
	return sub
}

// ExampleNames lists the bundled sample templates.
func ExampleNames() []string {
	entries, err := fs.ReadDir(ExampleTemplates(), ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}
