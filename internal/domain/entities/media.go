package entities

import (
	"time"

	"video-merger/internal/domain/filtergraph"
	consts "video-merger/pkg/constants"
)

// MediaInput is the probed view of one uploaded clip. It is built once by the
// inspector and not modified afterwards.
type MediaInput struct {
	Path        string
	HasAudio    bool
	HasVideo    bool
	StreamKinds []string // codec_type per stream, in container order
	Codecs      []string // codec_name per stream, same order
	Duration    float64  // seconds, 0 when the container does not report it
}

// MergeRequest tracks one intro+main merge from upload to cleanup.
type MergeRequest struct {
	ID         string
	IntroPath  string
	MainPath   string
	OutputPath string
	Intro      *MediaInput
	Main       *MediaInput
	Plan       *filtergraph.Plan
	State      string
	CreatedAt  time.Time
}

func NewMergeRequest(id string) *MergeRequest {
	return &MergeRequest{
		ID:        id,
		State:     consts.StateReceived,
		CreatedAt: time.Now(),
	}
}

// Terminal reports whether the request reached completed or failed.
func (r *MergeRequest) Terminal() bool {
	return r.State == consts.StateCompleted || r.State == consts.StateFailed
}

// ScratchFiles lists every file the request may have created.
func (r *MergeRequest) ScratchFiles() []string {
	files := make([]string, 0, 3)
	for _, p := range []string{r.IntroPath, r.MainPath, r.OutputPath} {
		if p != "" {
			files = append(files, p)
		}
	}
	return files
}
