// Package orchestrator wires the loader → extractor → form → renderer
// pipeline for one-shot rendering, providing dependency injection friendly
// helpers for consumers that prefer a single entry point over a session.
package orchestrator
