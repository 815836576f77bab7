package util

import (
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[\x00-\x1f"\\/:*?<>|]`)

// SanitizeFilename makes a label safe to use inside a quoted
// Content-Disposition filename. Line breaks are dropped, other unsafe
// characters become "-", and the result is trimmed.
func SanitizeFilename(name string) string {
	name = strings.NewReplacer("\r", "", "\n", "").Replace(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "-")
	name = strings.TrimSpace(name)
	if name == "" {
		return "untitled"
	}
	return name
}
