package file

import (
	"path/filepath"
	"strings"
)

// ScratchName builds the scratch file name for one file of a merge request.
// The client supplied name only contributes a known video extension; anything
// else becomes ".bin" so uploads can never pick their own path.
func ScratchName(requestID, role, originalName string) string {
	ext := VideoExtension(originalName)
	if ext == "" {
		ext = ".bin"
	}
	return requestID + "-" + role + ext
}

// RequestIDOf returns the request ID prefix of a scratch file name, or "".
func RequestIDOf(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndex(base, "-")
	if i <= 0 {
		return ""
	}
	return base[:i]
}
