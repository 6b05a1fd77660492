package usecases

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"sync"
	"time"

	"video-merger/internal/domain/entities"
	"video-merger/internal/domain/filtergraph"
	"video-merger/internal/domain/repositories"
	"video-merger/internal/infrastructure/queue"
	"video-merger/internal/metrics"
	"video-merger/internal/pkg/logging"
	consts "video-merger/pkg/constants"
	fe "video-merger/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MergeService runs the intro+main merge. A request returned by Merge must be
// passed to Deliver; every other path has already been cleaned up.
type MergeService interface {
	Merge(ctx context.Context, intro, main *multipart.FileHeader) (*entities.MergeRequest, error)
	Deliver(ctx context.Context, req *entities.MergeRequest) (*Delivery, error)
}

type Option func(*mergeService)

// WithArchive copies every merged output to archive before delivery.
func WithArchive(archive repositories.ArchiveStorage) Option {
	return func(s *mergeService) { s.archive = archive }
}

// WithTranscodeTimeout bounds queueing plus transcoding.
func WithTranscodeTimeout(d time.Duration) Option {
	return func(s *mergeService) { s.transcodeTimeout = d }
}

// WithIDGenerator replaces uuid.NewString for request IDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *mergeService) { s.newID = gen }
}

type mergeService struct {
	inspector        repositories.StreamInspector
	planner          *filtergraph.Planner
	transcoder       repositories.Transcoder
	storage          repositories.ScratchStorage
	archive          repositories.ArchiveStorage
	pool             *queue.WorkerPool
	transcodeTimeout time.Duration
	newID            func() string
}

func NewMergeService(
	inspector repositories.StreamInspector,
	planner *filtergraph.Planner,
	transcoder repositories.Transcoder,
	storage repositories.ScratchStorage,
	pool *queue.WorkerPool,
	opts ...Option,
) MergeService {
	s := &mergeService{
		inspector:  inspector,
		planner:    planner,
		transcoder: transcoder,
		storage:    storage,
		pool:       pool,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *mergeService) Merge(ctx context.Context, intro, main *multipart.FileHeader) (*entities.MergeRequest, error) {
	if intro == nil || main == nil {
		return nil, fe.ErrMissingFiles(nil)
	}
	if intro.Size == 0 || main.Size == 0 {
		return nil, fe.ErrInvalidUpload("uploaded video file is empty", nil)
	}

	req := entities.NewMergeRequest(s.newID())
	ctx = logging.ContextWithMergeID(ctx, req.ID)
	log := s.logger(ctx)
	metrics.MergesInFlight.Inc()

	fail := func(err error) (*entities.MergeRequest, error) {
		s.finish(ctx, req, err)
		return nil, err
	}

	introPath, err := s.storage.SaveUpload(req.ID, consts.RoleIntro, intro)
	if err != nil {
		return fail(fe.ErrInternal(fmt.Errorf("save intro: %w", err)))
	}
	req.IntroPath = introPath

	mainPath, err := s.storage.SaveUpload(req.ID, consts.RoleMain, main)
	if err != nil {
		return fail(fe.ErrInternal(fmt.Errorf("save main: %w", err)))
	}
	req.MainPath = mainPath
	req.OutputPath = s.storage.OutputPath(req.ID)

	req.State = consts.StateProbing
	req.Intro, req.Main, err = s.probe(ctx, req)
	if err != nil {
		return fail(err)
	}

	req.State = consts.StatePlanning
	req.Plan = s.planner.Plan(req.Intro.HasAudio, req.Main.HasAudio)
	metrics.AudioStrategy.WithLabelValues(req.Plan.Strategy()).Inc()
	log.Info().
		Bool("intro_audio", req.Intro.HasAudio).
		Bool("main_audio", req.Main.HasAudio).
		Str("strategy", req.Plan.Strategy()).
		Int("stages", len(req.Plan.Stages)).
		Msg("planned filter graph")

	req.State = consts.StateTranscoding
	if err := s.transcode(ctx, req); err != nil {
		return fail(err)
	}

	s.archiveOutput(ctx, req)
	return req, nil
}

// probe inspects both inputs concurrently. Both must succeed.
func (s *mergeService) probe(ctx context.Context, req *entities.MergeRequest) (*entities.MediaInput, *entities.MediaInput, error) {
	defer observeStage("probe", time.Now())

	var intro, main *entities.MediaInput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in, err := s.inspect(gctx, req.IntroPath)
		intro = in
		return err
	})
	g.Go(func() error {
		in, err := s.inspect(gctx, req.MainPath)
		main = in
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return intro, main, nil
}

func (s *mergeService) inspect(ctx context.Context, path string) (*entities.MediaInput, error) {
	in, err := s.inspector.Inspect(ctx, path)
	if err != nil {
		if !fe.IsKind(err, fe.KindProbe) {
			err = fe.ErrProbe(path, err)
		}
		return nil, err
	}
	return in, nil
}

func (s *mergeService) transcode(ctx context.Context, req *entities.MergeRequest) error {
	defer observeStage("transcode", time.Now())

	if s.transcodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.transcodeTimeout)
		defer cancel()
	}

	err := s.pool.Submit(ctx, &queue.Job{
		ID:   req.ID,
		Type: queue.JobTranscode,
		Run: func(jctx context.Context) error {
			return s.transcoder.Transcode(jctx, req.IntroPath, req.MainPath, req.Plan, req.OutputPath)
		},
	})
	switch {
	case err == nil:
		return nil
	case fe.IsKind(err, fe.KindTranscode):
		return err
	case errors.Is(err, queue.ErrPoolClosed):
		return fe.ErrTranscode("server is shutting down", err)
	case errors.Is(err, context.DeadlineExceeded):
		return fe.ErrTranscode("timed out waiting for a transcode slot", err)
	default:
		return fe.ErrTranscode("", err)
	}
}

// archiveOutput is best effort: a failed upload is logged and delivery goes on.
func (s *mergeService) archiveOutput(ctx context.Context, req *entities.MergeRequest) {
	if s.archive == nil {
		return
	}
	defer observeStage("archive", time.Now())

	url, err := s.archive.Archive(ctx, req.ID+".mp4", req.OutputPath)
	log := s.logger(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("archiving merged output failed")
		return
	}
	log.Info().Str("url", url).Msg("archived merged output")
}

// Deliver opens the merged output for streaming. The returned Delivery must
// be closed; closing it ends the request and removes its scratch files.
func (s *mergeService) Deliver(ctx context.Context, req *entities.MergeRequest) (*Delivery, error) {
	ctx = logging.ContextWithMergeID(ctx, req.ID)
	req.State = consts.StateDelivering

	f, err := os.Open(req.OutputPath)
	if err == nil {
		var info os.FileInfo
		if info, err = f.Stat(); err == nil {
			return &Delivery{
				file:    f,
				size:    info.Size(),
				started: time.Now(),
				done:    func(err error) { s.finish(ctx, req, err) },
			}, nil
		}
		f.Close()
	}

	derr := fe.ErrDelivery(err)
	s.finish(ctx, req, derr)
	return nil, derr
}

// finish moves req to its terminal state and removes its scratch files.
// Later calls are no-ops.
func (s *mergeService) finish(ctx context.Context, req *entities.MergeRequest, err error) {
	if req.Terminal() {
		return
	}
	log := s.logger(ctx)

	outcome := consts.StateCompleted
	if err != nil {
		req.State = consts.StateFailed
		outcome = string(fe.KindOf(err))
	} else {
		req.State = consts.StateCompleted
	}

	for _, p := range req.ScratchFiles() {
		if rmErr := s.storage.Remove(p); rmErr != nil {
			metrics.CleanupErrors.Inc()
			log.Warn().Err(rmErr).Str("path", p).Msg("could not remove scratch file")
		}
	}

	metrics.MergesTotal.WithLabelValues(outcome).Inc()
	metrics.MergesInFlight.Dec()
	observeStage("total", req.CreatedAt)

	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Str("state", req.State).Dur("elapsed", time.Since(req.CreatedAt)).Msg("merge finished")
}

func (s *mergeService) logger(ctx context.Context) zerolog.Logger {
	return logging.WithContext(ctx, logging.WithComponent("merge"))
}

func observeStage(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Delivery streams a merged output to the client. Closing it finishes the
// merge request: a short read or a reported write error fails it with a
// delivery error, otherwise it completes.
type Delivery struct {
	file    *os.File
	size    int64
	sent    int64
	started time.Time
	once    sync.Once
	done    func(error)
	err     error
}

func (d *Delivery) Read(p []byte) (int, error) {
	n, err := d.file.Read(p)
	d.sent += int64(n)
	return n, err
}

func (d *Delivery) Size() int64 {
	return d.size
}

func (d *Delivery) Close() error {
	return d.CloseWithError(nil)
}

// CloseWithError lets the HTTP layer report a write failure.
func (d *Delivery) CloseWithError(writeErr error) error {
	d.once.Do(func() {
		_ = d.file.Close()
		switch {
		case writeErr != nil:
			d.err = fe.ErrDelivery(writeErr)
		case d.sent < d.size:
			d.err = fe.ErrDelivery(fmt.Errorf("sent %d of %d bytes", d.sent, d.size))
		}
		observeStage("deliver", d.started)
		d.done(d.err)
	})
	return nil
}

// Err is the delivery outcome once closed.
func (d *Delivery) Err() error {
	return d.err
}
