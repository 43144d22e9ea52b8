// Package options defines shared helpers for per-component option structs.
//
// Each component exposes an Options struct with NewOptions, AddFlags,
// Validate, and (where needed) Complete, following the same contract the
// application aggregates compose.
package options

import "strings"

// Join concatenates prefixes with "." separator.
// If the result is non-empty, it appends a trailing ".".
// This is used to build flag names like "archestra.base-url".
func Join(prefixes ...string) string {
	joined := strings.Join(prefixes, ".")
	if joined != "" {
		joined += "."
	}
	return joined
}
