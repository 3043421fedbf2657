package util

import (
	"net/url"
	"strings"
)

// IsValidHTTPURL accepts absolute http/https URLs only. Destination targets
// are handed straight to a redirect, so scheme laundering must be rejected at
// the boundary.
func IsValidHTTPURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// NormalizeCode trims surrounding whitespace from a visitor-supplied short
// code. Codes are case-sensitive; no case folding happens here.
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}
