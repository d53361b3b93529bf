package domain

import "context"

// EnqueuePort triggers report generation, returning the id of the
// active (possibly pre-existing) job
type EnqueuePort interface {
	Trigger(ctx context.Context) (reportID string, err error)
	GetStatus(ctx context.Context, reportID string) (Report, error)
}

// WorkerPort runs the background consumer loop
type WorkerPort interface {
	Run(ctx context.Context) error
}
