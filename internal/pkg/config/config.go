package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Merge    MergeConfig
	Encoding EncodingConfig
	Archive  ArchiveConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	BodyLimit       int64 // bytes, both uploads together
	ShutdownTimeout time.Duration
}

type MergeConfig struct {
	TempDir          string
	Workers          int
	ProbeTimeout     time.Duration
	TranscodeTimeout time.Duration
	StaleAfter       time.Duration // sweeper removes scratch files older than this
	SweepSchedule    string        // cron schedule with seconds field
	FFmpegPath       string
	FFprobePath      string
}

// EncodingConfig is the fixed output profile. Nothing in the planner
// branches on these values.
type EncodingConfig struct {
	VideoCodec    string
	Preset        string
	CRF           int
	AudioCodec    string
	AudioBitrate  string
	FrameRate     int
	PixelFormat   string
	SampleRate    int
	ChannelLayout string
	Width         int // output canvas; clips are scaled and padded onto it
	Height        int
}

// ArchiveConfig enables uploading merged outputs to S3 when Bucket is set.
type ArchiveConfig struct {
	Bucket string
	Region string
	Prefix string
}

type LogConfig struct {
	Level string
}

func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", getEnv("SERVER_PORT", "3000")),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			BodyLimit:       getEnvAsInt64("SERVER_BODY_LIMIT", 2*1024*1024*1024), // 2GB
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Merge: MergeConfig{
			TempDir:          getEnv("MERGE_TEMP_DIR", filepath.Join(os.TempDir(), "video-merger")),
			Workers:          getEnvAsInt("MERGE_WORKERS", 2),
			ProbeTimeout:     getEnvAsDuration("MERGE_PROBE_TIMEOUT", 30*time.Second),
			TranscodeTimeout: getEnvAsDuration("MERGE_TRANSCODE_TIMEOUT", 10*time.Minute),
			StaleAfter:       getEnvAsDuration("MERGE_STALE_AFTER", time.Hour),
			SweepSchedule:    getEnv("MERGE_SWEEP_SCHEDULE", "0 */5 * * * *"),
			FFmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
			FFprobePath:      getEnv("FFPROBE_PATH", "ffprobe"),
		},
		Encoding: EncodingConfig{
			VideoCodec:    getEnv("ENCODE_VIDEO_CODEC", "libx264"),
			Preset:        getEnv("ENCODE_PRESET", "veryfast"),
			CRF:           getEnvAsInt("ENCODE_CRF", 23),
			AudioCodec:    getEnv("ENCODE_AUDIO_CODEC", "aac"),
			AudioBitrate:  getEnv("ENCODE_AUDIO_BITRATE", "128k"),
			FrameRate:     getEnvAsInt("ENCODE_FRAME_RATE", 30),
			PixelFormat:   getEnv("ENCODE_PIXEL_FORMAT", "yuv420p"),
			SampleRate:    getEnvAsInt("ENCODE_SAMPLE_RATE", 48000),
			ChannelLayout: getEnv("ENCODE_CHANNEL_LAYOUT", "stereo"),
			Width:         getEnvAsInt("ENCODE_WIDTH", 1280),
			Height:        getEnvAsInt("ENCODE_HEIGHT", 720),
		},
		Archive: ArchiveConfig{
			Bucket: getEnv("MERGE_ARCHIVE_BUCKET", ""),
			Region: getEnv("MERGE_ARCHIVE_REGION", "eu-central-1"),
			Prefix: getEnv("MERGE_ARCHIVE_PREFIX", "merged"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// EnsureDirs creates the scratch area.
func (c *Config) EnsureDirs() error {
	return os.MkdirAll(c.Merge.TempDir, 0o755)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
