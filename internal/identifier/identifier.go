// Package identifier normalizes raw user-supplied usernames into
// filesystem-safe record identifiers.
package identifier

import "regexp"

// Everything except ASCII letters, digits, underscore and the common
// CJK ideograph block is stripped.
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_\x{4e00}-\x{9fa5}]`)

// Sanitize strips every unsafe character from raw, keeping the rest in
// original order. It is a pure function and may return the empty string
// (an all-punctuation username), which callers use as-is.
func Sanitize(raw string) string {
	return unsafeChars.ReplaceAllString(raw, "")
}
