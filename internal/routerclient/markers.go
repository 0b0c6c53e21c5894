package routerclient

import (
	"bytes"
	"strings"
)

// BodyContainsAny reports whether body contains at least one of the markers,
// case-insensitively. Empty markers never match.
func BodyContainsAny(body []byte, markers []string) bool {
	if len(markers) == 0 {
		return false
	}
	lower := bytes.ToLower(body)
	for _, m := range markers {
		if m == "" {
			continue
		}
		if bytes.Contains(lower, []byte(strings.ToLower(m))) {
			return true
		}
	}
	return false
}

// StatusIn reports whether code is in set.
func StatusIn(code int, set []int) bool {
	for _, s := range set {
		if code == s {
			return true
		}
	}
	return false
}

// BodySnippet trims body down to something safe to put in a log line.
func BodySnippet(body []byte, max int) string {
	s := strings.TrimSpace(string(body))
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
