package services

import (
	"regexp"
	"strings"
)

var scriptOpenTag = regexp.MustCompile(`(?i)<\s*script`)

// Sanitize neutralizes opening script tags and strips NUL bytes. It is applied to
// free-text fields of blog posts and opportunities before they are stored; it is not
// a general HTML sanitizer.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = scriptOpenTag.ReplaceAllString(s, "&lt;script")
	return strings.ReplaceAll(s, "\x00", "")
}
