package config

import "strings"

// IsURL reports whether a source reference points at a remote http(s) location.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
