package scanner

import (
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// JobKind identifies queued scan runs.
const JobKind = "ArbitrageScanJob"

// pendingStates are the job states in which an equal request is rejected as
// a duplicate. Finished jobs never block a new run.
var pendingStates = []rivertype.JobState{ //nolint: gochecknoglobals
	rivertype.JobStateAvailable,
	rivertype.JobStatePending,
	rivertype.JobStateRetryable,
	rivertype.JobStateRunning,
	rivertype.JobStateScheduled,
}

// JobArgs is a queued scan request.
type JobArgs struct {
	Request

	attempts int
	window   time.Duration
}

// NewJobArgs wraps req for the queue. attempts is the retry budget and window,
// when non-zero, limits duplicate detection to jobs inserted within it.
func NewJobArgs(req Request, attempts int, window time.Duration) JobArgs {
	return JobArgs{Request: req, attempts: attempts, window: window}
}

// Kind implements river.JobArgs.
func (JobArgs) Kind() string { return JobKind }

// InsertOpts implements river.JobArgsWithInsertOpts.
func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.attempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: args.window,
			ByState:  pendingStates,
		},
	}
}
