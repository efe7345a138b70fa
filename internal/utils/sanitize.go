package utils

import (
	"path/filepath"
	"strings"
)

// SanitizeFilename reduces an uploaded filename to a safe basename.
// Path separators and parent references are stripped so the result can
// never escape the upload directory.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")

	// Drop control characters and anything a filesystem may choke on
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
		case strings.ContainsRune(`/\:*?"<>|`, r):
		default:
			b.WriteRune(r)
		}
	}
	name = strings.TrimSpace(b.String())

	if name == "" || name == "." {
		return "upload"
	}
	return name
}
