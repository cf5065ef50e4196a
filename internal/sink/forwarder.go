package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/foldlab/foldd/internal/dispatch"
	"github.com/foldlab/foldd/internal/model"
)

// recordTimeout bounds each sink write so a stalled mirror cannot back up
// the event channel indefinitely.
const recordTimeout = 10 * time.Second

// Forwarder drains completion events from the dispatcher's broker into a
// sink. Sink errors are logged and swallowed.
type Forwarder struct {
	sink   Sink
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewForwarder creates a forwarder writing to the given sink.
func NewForwarder(s Sink, logger *slog.Logger) *Forwarder {
	return &Forwarder{sink: s, logger: logger}
}

// Start consumes events on a background goroutine until the channel closes.
func (f *Forwarder) Start(events <-chan dispatch.CompletionEvent) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for ev := range events {
			f.record(ev)
		}
	}()
}

// Wait blocks until the event channel has closed and drained.
func (f *Forwarder) Wait() {
	f.wg.Wait()
}

func (f *Forwarder) record(ev dispatch.CompletionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	res := Result{
		JobID:       ev.JobID,
		Status:      model.StatusSucceeded,
		Sequence:    ev.Input.Sequence,
		Artifact:    ev.Artifact,
		Energy:      ev.Energy,
		CompletedAt: ev.CompletedAt,
	}
	if err := f.sink.Record(ctx, res); err != nil {
		f.logger.Warn("persistence sink write failed", "job_id", ev.JobID, "error", err)
		return
	}
	f.logger.Debug("mirrored job result", "job_id", ev.JobID)
}
