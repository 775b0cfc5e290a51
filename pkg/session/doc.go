// Package session models one template editing session as an immutable value.
//
// A Session holds the template text, the placeholder set derived from it, the
// form values and the last render result. Every transition returns a new
// Session. Upload replaces all four together and bumps the generation, so a
// render started for an older template can be recognised and discarded when
// it completes.
//
// Controller owns the current Session for interactive front ends. It
// serialises transitions, runs loads and renders without holding its lock and
// reports non-fatal failures through a Notifier.
package session
