package constants

import "strings"

// AllowedExtensions holds the allowed file extensions for listing uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// MaxUploadBytes caps listing sheet uploads at 10MB.
const MaxUploadBytes = 10 << 20

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt checks if a file extension is in the allowed set.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
