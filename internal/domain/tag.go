package domain

import (
	"regexp"
	"strings"
)

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugNonWord = regexp.MustCompile(`[^a-z0-9_-]+`)
	slugHyphens = regexp.MustCompile(`-{2,}`)
)

// Tag is a registry entry. Slug is the unique key.
type Tag struct {
	ID   int64
	Name string
	Slug string
}

// Slugify lowercases ASCII letters, turns whitespace runs into hyphens and drops every
// character outside [a-z0-9_-]. The result never starts or ends with a hyphen.
func Slugify(name string) string {
	s := asciiLower(strings.TrimSpace(name))
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugNonWord.ReplaceAllString(s, "")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
