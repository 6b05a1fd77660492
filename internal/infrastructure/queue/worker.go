package queue

import (
	"sync"

	"video-merger/internal/pkg/logging"
)

type Worker struct {
	ID      int
	JobChan <-chan *Job
	Wg      *sync.WaitGroup
	closing func() bool
}

// Start runs the worker until JobChan is closed.
func (w *Worker) Start() {
	go func() {
		defer w.Wg.Done()
		log := logging.WithComponent("worker")
		for job := range w.JobChan {
			if w.closing() {
				job.finish(ErrPoolClosed)
				continue
			}
			if err := job.ctx.Err(); err != nil {
				log.Debug().Int("worker", w.ID).Str("job", job.ID).Msg("job cancelled before start")
				job.finish(err)
				continue
			}
			w.processJob(job)
		}
	}()
}

func (w *Worker) processJob(job *Job) {
	log := logging.WithContext(job.ctx, logging.WithComponent("worker"))
	log.Debug().Int("worker", w.ID).Str("job", job.ID).Str("type", string(job.Type)).Msg("processing job")

	err := job.Run(job.ctx)
	if err != nil {
		log.Debug().Int("worker", w.ID).Str("job", job.ID).Err(err).Msg("job failed")
	}
	job.finish(err)
}
