package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SERVER_PORT", "MERGE_TEMP_DIR", "MERGE_WORKERS", "MERGE_TRANSCODE_TIMEOUT", "MERGE_ARCHIVE_BUCKET", "ENCODE_WIDTH", "ENCODE_HEIGHT", "FFPROBE_PATH"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 2, cfg.Merge.Workers)
	assert.Equal(t, 10*time.Minute, cfg.Merge.TranscodeTimeout)
	assert.Equal(t, "libx264", cfg.Encoding.VideoCodec)
	assert.Equal(t, "aac", cfg.Encoding.AudioCodec)
	assert.Equal(t, 30, cfg.Encoding.FrameRate)
	assert.Equal(t, 1280, cfg.Encoding.Width)
	assert.Equal(t, 720, cfg.Encoding.Height)
	assert.Equal(t, "ffprobe", cfg.Merge.FFprobePath)
	assert.Equal(t, "video-merger", filepath.Base(cfg.Merge.TempDir))
	assert.Empty(t, cfg.Archive.Bucket)
}

func TestLoadConfigPortOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "4000")
	t.Setenv("PORT", "")
	assert.Equal(t, "4000", LoadConfig().Server.Port)

	t.Setenv("PORT", "8080")
	assert.Equal(t, "8080", LoadConfig().Server.Port)
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MERGE_WORKERS", "many")
	t.Setenv("MERGE_TRANSCODE_TIMEOUT", "-5s")
	t.Setenv("SERVER_BODY_LIMIT", "big")

	cfg := LoadConfig()

	assert.Equal(t, 2, cfg.Merge.Workers)
	assert.Equal(t, 10*time.Minute, cfg.Merge.TranscodeTimeout)
	assert.Equal(t, int64(2*1024*1024*1024), cfg.Server.BodyLimit)
}

func TestEnsureDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scratch", "nested")
	t.Setenv("MERGE_TEMP_DIR", dir)

	cfg := LoadConfig()
	require.NoError(t, cfg.EnsureDirs())
	assert.DirExists(t, dir)
}
