package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"video-merger/internal/domain/filtergraph"
	"video-merger/internal/pkg/config"
	"video-merger/internal/pkg/logging"
	fe "video-merger/pkg/errors"
)

// Runner executes the engine binary with args, streaming stderr into stderr.
type Runner interface {
	Run(ctx context.Context, binary string, args []string, stderr io.Writer) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, binary string, args []string, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stderr = stderr
	return cmd.Run()
}

// diagnosticLines is how much of stderr ends up in a TranscodeError.
const diagnosticLines = 8

// Transcoder runs ffmpeg with a planned filter graph.
type Transcoder struct {
	binary string
	enc    config.EncodingConfig
	runner Runner
}

func NewTranscoder(binary string, enc config.EncodingConfig) *Transcoder {
	return NewTranscoderWithRunner(binary, enc, execRunner{})
}

func NewTranscoderWithRunner(binary string, enc config.EncodingConfig, runner Runner) *Transcoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Transcoder{binary: binary, enc: enc, runner: runner}
}

// Args builds the ffmpeg argument list. The video label is always mapped;
// the audio label only when the plan has one.
func (t *Transcoder) Args(introPath, mainPath string, plan *filtergraph.Plan, outputPath string) []string {
	args := make([]string, 0, 40)

	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")
	args = append(args, "-i", introPath, "-i", mainPath)
	args = append(args, "-filter_complex", plan.FilterComplex())

	args = append(args, "-map", plan.VideoLabel.String())
	if plan.HasAudio() {
		args = append(args, "-map", plan.AudioLabel.String())
	}

	args = append(args,
		"-c:v", t.enc.VideoCodec,
		"-preset", t.enc.Preset,
		"-crf", strconv.Itoa(t.enc.CRF),
	)
	if plan.HasAudio() {
		args = append(args, "-c:a", t.enc.AudioCodec, "-b:a", t.enc.AudioBitrate)
	} else {
		args = append(args, "-an")
	}

	args = append(args, "-movflags", "+faststart", outputPath)
	return args
}

// Transcode runs the plan. On failure the partial output is removed and a
// transcode MergeError carrying the tail of ffmpeg's stderr is returned.
func (t *Transcoder) Transcode(ctx context.Context, introPath, mainPath string, plan *filtergraph.Plan, outputPath string) error {
	if plan == nil {
		return fe.ErrTranscode("no filter graph plan", nil)
	}
	if err := plan.Validate(); err != nil {
		return fe.ErrTranscode("invalid filter graph plan", err)
	}

	log := logging.WithContext(ctx, logging.WithComponent("transcoder"))
	args := t.Args(introPath, mainPath, plan, outputPath)
	log.Debug().Str("binary", t.binary).Strs("args", args).Msg("starting ffmpeg")

	var stderr bytes.Buffer
	progress := &logging.LineWriter{Logger: log, Field: "ffmpeg"}
	err := t.runner.Run(ctx, t.binary, args, io.MultiWriter(&stderr, progress))
	if err == nil {
		if _, statErr := os.Stat(outputPath); statErr != nil {
			return fe.ErrTranscode("ffmpeg exited without writing output", statErr)
		}
		return nil
	}

	if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
		log.Warn().Err(rmErr).Str("path", outputPath).Msg("could not remove partial output")
	}

	diagnostic := tail(stderr.String(), diagnosticLines)
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			diagnostic = "transcoding timed out"
		} else {
			diagnostic = "transcoding cancelled"
		}
		err = fmt.Errorf("%w: %v", ctxErr, err)
	}
	return fe.ErrTranscode(diagnostic, err)
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
