package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage enqueues background jobs. Inserts participate in the surrounding
// transaction when the backend supports it.
type JobStorage interface {
	// AddJob enqueues a job and reports false when it was skipped as a
	// duplicate of an existing unique job.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
