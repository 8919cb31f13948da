package domain

import (
	"net/url"
	"path"
	"strings"
)

// TitleFromURL derives a best-effort human-readable title from a
// document URL: the unescaped final path segment, falling back to the
// host when the path is empty.
func TitleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return u.Host
	}

	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	return strings.TrimSpace(base)
}
