// Package export delivers rendered output to its destinations: the terminal
// clipboard, a file named output.html, any io.Writer, or an HTTP attachment.
// Every exporter receives the raw substitution output; the formatted preview
// copy never reaches an exporter.
package export
