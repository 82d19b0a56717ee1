package util

import "strings"

// NormalizeTicker trims whitespace and upper-cases a ticker symbol.
func NormalizeTicker(s string) string {
    return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeUsername trims whitespace and lower-cases a username.
func NormalizeUsername(s string) string {
    return strings.ToLower(strings.TrimSpace(s))
}
