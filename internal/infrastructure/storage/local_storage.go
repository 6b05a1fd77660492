package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"video-merger/pkg/file"
)

// LocalStorage is the scratch area. Every file it creates is named after the
// merge request ID, so concurrent requests never share a path.
type LocalStorage struct {
	BasePath string
}

func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{BasePath: basePath}
}

func (l *LocalStorage) BaseDir() string {
	return l.BasePath
}

// SaveUpload copies the uploaded part to <base>/<id>-<role><ext>.
func (l *LocalStorage) SaveUpload(requestID, role string, fileHeader *multipart.FileHeader) (string, error) {
	fullPath := filepath.Join(l.BasePath, file.ScratchName(requestID, role, fileHeader.Filename))

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", role, err)
	}
	defer src.Close()

	if err := os.MkdirAll(l.BasePath, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}

	outFile, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", fullPath, err)
	}

	if _, err := io.Copy(outFile, src); err != nil {
		outFile.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("write %s: %w", fullPath, err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("close %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (l *LocalStorage) OutputPath(requestID string) string {
	return filepath.Join(l.BasePath, file.ScratchName(requestID, "merged", "out.mp4"))
}

// Remove deletes path. Paths outside the scratch area are refused and a
// missing file is not an error.
func (l *LocalStorage) Remove(path string) error {
	rel, err := filepath.Rel(l.BasePath, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("refusing to remove %s outside scratch dir", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
