package store

import (
	"context"
	"errors"

	"github.com/foldlab/foldd/internal/model"
)

// ErrNotFound is returned when no record exists for a job id.
var ErrNotFound = errors.New("not found")

// ErrUnreadable is returned when a record exists but cannot be decoded.
// It is a server-side fault, distinct from ErrNotFound.
var ErrUnreadable = errors.New("record unreadable")

// Store defines the durable persistence operations for jobs. Implementations
// must tolerate concurrent writers across different job ids; within one id
// the dispatcher is the sole status/artifact writer.
type Store interface {
	// PutInput writes the input record for a job. An existing record is
	// silently replaced; an in-flight execution keeps its already-read copy.
	PutInput(ctx context.Context, in *model.JobInput) error
	// GetInput returns the input record or ErrNotFound.
	GetInput(ctx context.Context, id string) (*model.JobInput, error)
	// HasInput distinguishes "never submitted" from "submitted, no status yet".
	HasInput(ctx context.Context, id string) (bool, error)

	// PutStatus fully overwrites the status record; last writer wins.
	PutStatus(ctx context.Context, rec *model.StatusRecord) error
	// GetStatus returns ErrNotFound if no status was ever written and
	// ErrUnreadable if the record exists but is corrupt.
	GetStatus(ctx context.Context, id string) (*model.StatusRecord, error)

	// PutArtifact writes the structural output for a job.
	PutArtifact(ctx context.Context, id string, data []byte) error
	// GetArtifact returns the artifact bytes or ErrNotFound.
	GetArtifact(ctx context.Context, id string) ([]byte, error)

	// ListIDs returns the ids of all jobs that have an input record.
	ListIDs(ctx context.Context) ([]string, error)
}
