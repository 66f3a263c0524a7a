package remixapi

import (
	"net/url"
	"strings"
)

// NormalizePath converts a layer or file path to its POSIX form: backslashes become slashes,
// repeated separators collapse, "." segments and trailing separators are dropped.
// ".." segments are kept as they are.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	absolute := strings.HasPrefix(p, "/")

	parts := strings.Split(p, "/")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		kept = append(kept, part)
	}

	joined := strings.Join(kept, "/")
	if absolute {
		return "/" + joined
	}
	if joined == "" {
		return "."
	}
	return joined
}

// EscapeLayerID normalizes id and escapes it for use as a single path segment
func EscapeLayerID(id string) string {
	return url.QueryEscape(NormalizePath(id))
}

// UnescapeLayerID undoes the percent-encoding the service applies to layer ids.
// A '+' is kept literally.
func UnescapeLayerID(id string) string {
	if u, err := url.PathUnescape(id); err == nil {
		return u
	}
	return id
}

// escapeAttributePath escapes every segment of a USD attribute path but keeps the separators
func escapeAttributePath(attr string) string {
	parts := strings.Split(attr, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
