// Package featureflags gates the opt-in cache-coherence behaviors
// (strict cache authorization, mutation invalidation) behind environment
// switches, so the default deployment keeps the documented semantics.
package featureflags

import (
	"os"
	"strings"
)

// Enabled reports whether FLAG_<NAME> is set to a truthy value
// (true/1/yes/on, case-insensitive)
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
