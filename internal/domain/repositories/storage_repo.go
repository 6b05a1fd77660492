package repositories

import (
	"context"
	"mime/multipart"
)

// ScratchStorage is the request-isolated temporary area for uploads and
// outputs.
type ScratchStorage interface {
	SaveUpload(requestID, role string, fileHeader *multipart.FileHeader) (string, error)
	OutputPath(requestID string) string
	Remove(path string) error
	BaseDir() string
}

// ArchiveStorage keeps a copy of merged outputs outside the scratch area.
type ArchiveStorage interface {
	Archive(ctx context.Context, key, path string) (string, error)
}
