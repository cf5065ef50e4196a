// Package sink mirrors completed job results to an external database. The
// mirror is best-effort and non-authoritative: failures here are logged and
// swallowed, and never affect a job's outcome or visibility.
package sink

import (
	"context"
	"time"
)

// Result is the completed-job record forwarded to a sink, upserted by job id.
type Result struct {
	JobID       string
	Status      string
	Sequence    string
	Artifact    []byte
	Energy      *float64
	CompletedAt time.Time
}

// Sink receives completed job results.
type Sink interface {
	// Record upserts the result keyed by job id.
	Record(ctx context.Context, r Result) error
	Close() error
}
