// Package placeholder scans template text for `{{name}}` tokens and derives
// the ordered, deduplicated placeholder set that drives form generation.
//
// The grammar is intentionally narrow: two opening braces, one or more word
// characters ([0-9A-Za-z_]) and two closing braces, with nothing else between
// them. Helper calls, dotted paths, block tags and tokens with whitespace
// inside the braces are left in the text for the template compiler to handle
// (or reject) and never become form fields.
package placeholder
