package queue

import "context"

type JobType string

const (
	JobTranscode JobType = "transcode"
)

// Job is one unit of work for the pool. Run receives the submitter's context.
type Job struct {
	ID   string
	Type JobType
	Run  func(ctx context.Context) error

	ctx  context.Context
	done chan error
}

func (j *Job) finish(err error) {
	j.done <- err
}
