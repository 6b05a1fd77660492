package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real multipart.FileHeader by parsing a form.
func fileHeader(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

func TestLocalStorageSaveUpload(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	p, err := s.SaveUpload("req-1", "intro", fileHeader(t, "intro", "a.MP4", []byte("intro-bytes")))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "req-1-intro.mp4"), p)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "intro-bytes", string(data))

	_, err = s.SaveUpload("req-1", "intro", fileHeader(t, "intro", "a.mp4", []byte("again")))
	assert.Error(t, err, "scratch names must not be reused")
}

func TestLocalStorageRemove(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	out := s.OutputPath("req-2")
	require.NoError(t, os.WriteFile(out, []byte("x"), 0o644))

	require.NoError(t, s.Remove(out))
	assert.NoFileExists(t, out)
	assert.NoError(t, s.Remove(out), "missing file is not an error")

	outside := filepath.Join(t.TempDir(), "keep.mp4")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	assert.Error(t, s.Remove(outside))
	assert.FileExists(t, outside)
	assert.Error(t, s.Remove(dir))
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorageArchive(t *testing.T) {
	src := filepath.Join(t.TempDir(), "merged.mp4")
	require.NoError(t, os.WriteFile(src, []byte("movie"), 0o644))

	client := &fakeS3{}
	s := NewS3StorageWithClient(client, "bucket", "eu-west-1", "merged")

	url, err := s.Archive(context.Background(), "req-3.mp4", src)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.eu-west-1.amazonaws.com/merged/req-3.mp4", url)
	assert.Equal(t, "merged/req-3.mp4", aws.ToString(client.input.Key))
	assert.Equal(t, "bucket", aws.ToString(client.input.Bucket))
	assert.Equal(t, "movie", client.body)

	client.err = fmt.Errorf("access denied")
	_, err = s.Archive(context.Background(), "req-3.mp4", src)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "access denied"))
}
