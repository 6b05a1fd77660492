package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"video-merger/internal/domain/entities"
	"video-merger/internal/pkg/logging"
	fe "video-merger/pkg/errors"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ProbeFunc runs ffprobe on path and returns its JSON output.
type ProbeFunc func(path string, timeout time.Duration) (string, error)

func ffprobe(path string, timeout time.Duration) (string, error) {
	return ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{"v": "error"})
}

var (
	ffprobeBinary   atomic.Value // string
	registerFFprobe sync.Once
)

// SetFFprobePath makes ffmpeg-go run binary instead of the "ffprobe" found on
// PATH. An empty binary restores the PATH lookup.
func SetFFprobePath(binary string) {
	ffprobeBinary.Store(binary)
	registerFFprobe.Do(func() {
		ffmpeg.GlobalCommandOptions = append(ffmpeg.GlobalCommandOptions, redirectFFprobe)
	})
}

// redirectFFprobe rewrites commands ffmpeg-go built for "ffprobe".
func redirectFFprobe(cmd *exec.Cmd) {
	binary, _ := ffprobeBinary.Load().(string)
	if binary == "" || binary == "ffprobe" || len(cmd.Args) == 0 || cmd.Args[0] != "ffprobe" {
		return
	}
	cmd.Args[0] = binary
	cmd.Path, cmd.Err = binary, nil
	if !strings.ContainsRune(binary, '/') {
		if resolved, err := exec.LookPath(binary); err != nil {
			cmd.Err = err
		} else {
			cmd.Path = resolved
		}
	}
}

// Inspector answers which stream kinds a file carries.
type Inspector struct {
	probe   ProbeFunc
	timeout time.Duration
}

// NewInspector probes with the ffprobe at binary, or the one on PATH when
// binary is empty.
func NewInspector(binary string, timeout time.Duration) *Inspector {
	SetFFprobePath(binary)
	return NewInspectorWithProbe(ffprobe, timeout)
}

func NewInspectorWithProbe(probe ProbeFunc, timeout time.Duration) *Inspector {
	return &Inspector{probe: probe, timeout: timeout}
}

// Inspect probes path. Any failure, including a file without a video stream,
// is returned as a probe MergeError.
func (i *Inspector) Inspect(ctx context.Context, path string) (*entities.MediaInput, error) {
	if err := ctx.Err(); err != nil {
		return nil, fe.ErrProbe(path, err)
	}

	timeout := i.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	out, err := i.probe(path, timeout)
	if err != nil {
		return nil, fe.ErrProbe(path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fe.ErrProbe(path, err)
	}

	input, err := ParseProbe([]byte(out))
	if err != nil {
		return nil, fe.ErrProbe(path, err)
	}
	input.Path = path

	log := logging.WithContext(ctx, logging.WithComponent("inspector"))
	log.Debug().
		Str("path", path).
		Strs("streams", input.StreamKinds).
		Strs("codecs", input.Codecs).
		Bool("has_audio", input.HasAudio).
		Msg("probed input")

	return input, nil
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type probeStream struct {
	Index       int            `json:"index"`
	CodecType   string         `json:"codec_type"`
	CodecName   string         `json:"codec_name"`
	Disposition map[string]int `json:"disposition"`
}

// ParseProbe converts ffprobe JSON into a MediaInput. Cover art is reported
// as a video stream by ffprobe and is not counted as one.
func ParseProbe(data []byte) (*entities.MediaInput, error) {
	var raw probeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(raw.Streams) == 0 {
		return nil, fmt.Errorf("no streams found")
	}

	input := &entities.MediaInput{
		StreamKinds: make([]string, 0, len(raw.Streams)),
		Codecs:      make([]string, 0, len(raw.Streams)),
	}
	for _, s := range raw.Streams {
		input.StreamKinds = append(input.StreamKinds, s.CodecType)
		input.Codecs = append(input.Codecs, s.CodecName)
		switch s.CodecType {
		case "audio":
			input.HasAudio = true
		case "video":
			if s.Disposition["attached_pic"] != 1 {
				input.HasVideo = true
			}
		}
	}
	if !input.HasVideo {
		return nil, fmt.Errorf("no video stream found")
	}
	if d, err := strconv.ParseFloat(strings.TrimSpace(raw.Format.Duration), 64); err == nil {
		input.Duration = d
	}
	return input, nil
}
