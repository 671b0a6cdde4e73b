package usecase

import (
	"net/url"
	"strings"

	"NewsDesk/internal/domain"
)

// placeholderHandles are values some upstream payloads put in the handle field when the
// real author is unknown.
var placeholderHandles = map[string]bool{
	"":          true,
	"i":         true,
	"unknown":   true,
	"undefined": true,
	"null":      true,
	"user":      true,
}

var socialHosts = map[string]bool{
	"twitter.com":        true,
	"www.twitter.com":    true,
	"mobile.twitter.com": true,
	"x.com":              true,
	"www.x.com":          true,
}

// reservedPaths are first path segments on social hosts that are not user handles.
var reservedPaths = map[string]bool{
	"i": true, "intent": true, "search": true, "hashtag": true, "home": true, "share": true,
}

// ResolveAuthorLabel prefers the explicit author handle, then a handle taken from the
// post URL. It returns false when neither yields a usable handle.
func ResolveAuthorLabel(author *domain.Author, sourceURL string) (string, bool) {
	var name string
	if author != nil {
		name = strings.TrimSpace(author.DisplayName)
		handle := normalizeHandle(author.Handle)
		if !placeholderHandles[strings.ToLower(handle)] {
			return formatLabel(name, handle), true
		}
	}

	if handle := handleFromURL(sourceURL); handle != "" {
		return formatLabel(name, handle), true
	}
	return "", false
}

func normalizeHandle(h string) string {
	return strings.TrimPrefix(strings.TrimSpace(h), "@")
}

func handleFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !socialHosts[strings.ToLower(u.Host)] {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 {
		return ""
	}
	handle := normalizeHandle(segments[0])
	if reservedPaths[strings.ToLower(handle)] || placeholderHandles[strings.ToLower(handle)] {
		return ""
	}
	return handle
}

func formatLabel(name, handle string) string {
	if name == "" || strings.EqualFold(name, handle) {
		return "@" + handle
	}
	return name + " (@" + handle + ")"
}
