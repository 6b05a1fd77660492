package repositories

import (
	"context"

	"video-merger/internal/domain/entities"
	"video-merger/internal/domain/filtergraph"
)

// StreamInspector probes a media file for the stream kinds it carries.
type StreamInspector interface {
	Inspect(ctx context.Context, path string) (*entities.MediaInput, error)
}

// Transcoder runs a filter graph plan over the intro and main files and writes
// outputPath.
type Transcoder interface {
	Transcode(ctx context.Context, introPath, mainPath string, plan *filtergraph.Plan, outputPath string) error
}
