package helper

import (
	"path/filepath"
	"strings"

	consts "video-merger/pkg/constants"
)

// GetMimeTypeFromExtension maps a video file name to its Content-Type.
func GetMimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4", ".m4v":
		return consts.OutputContentType
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".avi":
		return "video/x-msvideo"
	default:
		return "application/octet-stream"
	}
}
