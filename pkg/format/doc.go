// Package format provides the display formatters registered with the render
// pipeline, one per markup dialect. Formatters only ever see the preview copy
// of rendered output; exported content is never reformatted.
package format
