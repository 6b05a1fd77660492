package file

import (
	"path/filepath"
	"strings"
)

// Containers ffmpeg can demux that clients commonly upload.
var videoExtensions = map[string]struct{}{
	".mp4": {}, ".m4v": {}, ".mov": {}, ".mkv": {}, ".webm": {}, ".avi": {},
	".mpg": {}, ".mpeg": {}, ".ts": {}, ".flv": {}, ".3gp": {},
}

// VideoExtension returns the lower-cased extension of name when it is a known
// video container, or "".
func VideoExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := videoExtensions[ext]; !ok {
		return ""
	}
	return ext
}
