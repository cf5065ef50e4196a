// Package service implements the public job contract: submit, status, and
// artifact retrieval, composing the store and the execution dispatcher.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/foldlab/foldd/internal/dispatch"
	"github.com/foldlab/foldd/internal/model"
	"github.com/foldlab/foldd/internal/store"
)

// ErrArtifactNotAvailable is returned when no artifact has been written for
// the job id yet, regardless of its status.
var ErrArtifactNotAvailable = errors.New("artifact not available")

// ValidationError rejects a malformed submission before any state is written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Stats holds aggregate job counts.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// Service is the job lifecycle facade used by the HTTP layer.
type Service struct {
	store      store.Store
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// New creates a job service.
func New(s store.Store, d *dispatch.Dispatcher, logger *slog.Logger) *Service {
	return &Service{store: s, dispatcher: d, logger: logger}
}

// Submit validates the input, mints an id when the caller supplied none,
// persists the input, and admits the job for dispatch; admission persists
// the explicit queued status. It returns as soon as the job is durable;
// execution happens out-of-band.
//
// Submitting an id that is already in flight replaces the stored input (the
// running execution keeps its already-read copy) without admitting a second
// execution and without touching its status. When admission is refused
// outright (full queue, shutdown) the input remains on disk with no status
// record; GetStatus reports such an id as queued until a retry succeeds.
func (s *Service) Submit(ctx context.Context, in *model.JobInput) (string, error) {
	if in.Sequence == "" {
		return "", &ValidationError{Reason: "sequence is required"}
	}
	in.Params.Normalize()
	if err := in.Params.Validate(); err != nil {
		return "", &ValidationError{Reason: err.Error()}
	}
	if in.JobID == "" {
		in.JobID = model.NewID()
	}

	if err := s.store.PutInput(ctx, in); err != nil {
		return "", fmt.Errorf("persist input: %w", err)
	}

	switch err := s.dispatcher.Enqueue(ctx, in.JobID); {
	case err == nil:
	case errors.Is(err, dispatch.ErrAlreadyAdmitted):
		// Input replaced; the next dispatch for this id reads the new copy.
		s.logger.Info("job already in flight, input replaced", "job_id", in.JobID)
	default:
		return "", fmt.Errorf("schedule dispatch: %w", err)
	}

	return in.JobID, nil
}

// GetStatus returns the job's status record. When the input exists but no
// status has been written (a crash or refused admission after the input
// write), a queued record is synthesized: the id was never handed to a
// worker, so queued is accurate where a running report would promise an
// execution that is not happening, and a resubmission stays safe.
// store.ErrNotFound means the id was never submitted; store.ErrUnreadable
// marks a corrupt record, a server fault.
func (s *Service) GetStatus(ctx context.Context, jobID string) (*model.StatusRecord, error) {
	rec, err := s.store.GetStatus(ctx, jobID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	ok, herr := s.store.HasInput(ctx, jobID)
	if herr != nil {
		return nil, fmt.Errorf("check input: %w", herr)
	}
	if !ok {
		return nil, store.ErrNotFound
	}
	return &model.StatusRecord{JobID: jobID, Status: model.StatusQueued}, nil
}

// GetArtifact returns the job's artifact bytes, or ErrArtifactNotAvailable
// while none has been written.
func (s *Service) GetArtifact(ctx context.Context, jobID string) ([]byte, error) {
	data, err := s.store.GetArtifact(ctx, jobID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrArtifactNotAvailable
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Stats aggregates job counts by status across the store.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{ByStatus: make(map[string]int)}
	for _, id := range ids {
		rec, err := s.GetStatus(ctx, id)
		if err != nil {
			s.logger.Warn("skipping job in stats", "job_id", id, "error", err)
			continue
		}
		st.Total++
		st.ByStatus[rec.Status]++
	}
	return st, nil
}
