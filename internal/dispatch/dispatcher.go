package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foldlab/foldd/internal/engine"
	"github.com/foldlab/foldd/internal/model"
	"github.com/foldlab/foldd/internal/store"
)

// ErrAlreadyAdmitted is returned when the job id is already queued or
// executing; the single-flight guarantee refuses a second admission.
var ErrAlreadyAdmitted = errors.New("job already queued or executing")

// ErrQueueFull is returned when the admission queue is at capacity.
var ErrQueueFull = errors.New("admission queue is full")

// ErrStopped is returned when the dispatcher is shutting down.
var ErrStopped = errors.New("dispatcher stopped")

// Dispatcher executes jobs on a bounded worker pool. Admission persists the
// queued status; workers dequeue, claim the id exclusively, and drive the
// status lifecycle queued→running→succeeded/failed in the store. The
// dispatcher is the only status writer, so a refused admission can never
// clobber a running or terminal record. One job's failure never affects
// another job or the process.
type Dispatcher struct {
	store    store.Store
	registry *engine.Registry
	logger   *slog.Logger
	broker   *Broker

	queue   chan string
	workers int
	wg      sync.WaitGroup

	mu       sync.Mutex
	admitted map[string]struct{}
	stopped  bool
}

// NewDispatcher creates a dispatcher with the given worker count and
// admission queue depth.
func NewDispatcher(s store.Store, reg *engine.Registry, logger *slog.Logger, workers, queueDepth int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueDepth < 1 {
		queueDepth = 1
	}
	return &Dispatcher{
		store:    s,
		registry: reg,
		logger:   logger,
		broker:   NewBroker(),
		queue:    make(chan string, queueDepth),
		workers:  workers,
		admitted: make(map[string]struct{}),
	}
}

// Broker returns the dispatcher's completion-event broker.
func (d *Dispatcher) Broker() *Broker {
	return d.broker
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.work()
		}()
	}
}

// Stop closes admission, drains queued jobs, waits for in-flight executions
// to finish, and closes the broker.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.broker.Close()
}

// Enqueue admits a job id for execution, persisting the queued status as
// part of admission. It returns ErrAlreadyAdmitted when the id is already
// queued or executing (the single-flight guard), ErrQueueFull when the
// bounded queue cannot accept more work, and ErrStopped during shutdown.
// Refusal writes nothing, so an in-flight or finished job's status is never
// touched by a duplicate submission. It never blocks.
func (d *Dispatcher) Enqueue(ctx context.Context, jobID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrStopped
	}
	if _, ok := d.admitted[jobID]; ok {
		return ErrAlreadyAdmitted
	}
	// Only Enqueue sends on the queue, and only under this mutex, so the
	// capacity check cannot go stale before the send below.
	if len(d.queue) == cap(d.queue) {
		return ErrQueueFull
	}

	// Queued is written before the id becomes visible to any worker. A
	// worker's running write therefore always happens-after this one.
	rec := &model.StatusRecord{JobID: jobID, Status: model.StatusQueued}
	if err := d.store.PutStatus(ctx, rec); err != nil {
		return fmt.Errorf("persist queued status: %w", err)
	}

	d.admitted[jobID] = struct{}{}
	d.queue <- jobID
	queueDepth.Inc()
	return nil
}

// work is the worker loop; it exits when the queue is closed and drained.
func (d *Dispatcher) work() {
	for id := range d.queue {
		queueDepth.Dec()
		d.run(id)
		d.release(id)
	}
}

// release gives up the worker's exclusive claim on the id.
func (d *Dispatcher) release(id string) {
	d.mu.Lock()
	delete(d.admitted, id)
	d.mu.Unlock()
}

// run executes one job. Every failure path, including a panic in the engine,
// ends in a terminal failed status rather than an escaped error.
func (d *Dispatcher) run(id string) {
	jobsInFlight.Inc()
	defer jobsInFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("job execution panicked", "job_id", id, "panic", r)
			d.finishFailed(id, fmt.Sprintf("execution panicked: %v", r))
		}
	}()

	ctx := context.Background()

	// Running is persisted before the engine is touched so pollers see
	// progress even for long invocations.
	rec := &model.StatusRecord{JobID: id, Status: model.StatusRunning}
	if err := d.store.PutStatus(ctx, rec); err != nil {
		d.logger.Error("failed to transition to running", "job_id", id, "error", err)
		d.finishFailed(id, fmt.Sprintf("failed to start: %v", err))
		return
	}

	in, err := d.store.GetInput(ctx, id)
	if err != nil {
		d.finishFailed(id, fmt.Sprintf("input unreadable: %v", err))
		return
	}

	// An unavailable preferred engine resolves to the stub; that is
	// degraded mode, not a job failure.
	eng, err := d.registry.Resolve()
	if err != nil {
		d.finishFailed(id, fmt.Sprintf("resolve engine: %v", err))
		return
	}
	if err := eng.Init(); err != nil {
		d.finishFailed(id, fmt.Sprintf("engine init: %v", err))
		return
	}

	params := in.Params
	params.Normalize()
	req := engine.Request{
		JobID:            id,
		Sequence:         in.Sequence,
		Directions:       in.Directions,
		Protocol:         params.Protocol,
		Repeats:          params.Repeats,
		Seed:             string(params.Seed),
		BiasToDirections: params.Bias(),
	}

	d.logger.Info("executing job",
		"job_id", id, "engine", eng.Name(), "protocol", req.Protocol)

	start := time.Now()
	res, err := eng.Execute(ctx, req)
	executionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		d.finishFailed(id, err.Error())
		return
	}

	// Artifact before status: a poller that observes succeeded has, with
	// high probability, a retrievable artifact already.
	if err := d.store.PutArtifact(ctx, id, res.Artifact); err != nil {
		d.finishFailed(id, fmt.Sprintf("write artifact: %v", err))
		return
	}
	if err := d.store.PutStatus(ctx, &model.StatusRecord{JobID: id, Status: model.StatusSucceeded}); err != nil {
		d.logger.Error("failed to persist succeeded status", "job_id", id, "error", err)
		return
	}

	jobsTotal.WithLabelValues(model.StatusSucceeded).Inc()
	d.logger.Info("job succeeded",
		"job_id", id, "engine", eng.Name(), "duration_ms", time.Since(start).Milliseconds())

	d.broker.Publish(CompletionEvent{
		JobID:       id,
		Input:       *in,
		Artifact:    res.Artifact,
		Energy:      res.Energy,
		CompletedAt: time.Now().UTC(),
	})
}

// finishFailed marks a job as failed with the given message.
func (d *Dispatcher) finishFailed(id, errMsg string) {
	rec := &model.StatusRecord{
		JobID:        id,
		Status:       model.StatusFailed,
		ErrorMessage: errMsg,
	}
	if err := d.store.PutStatus(context.Background(), rec); err != nil {
		d.logger.Error("failed to persist failed status", "job_id", id, "error", err)
		return
	}
	jobsTotal.WithLabelValues(model.StatusFailed).Inc()
	d.logger.Warn("job failed", "job_id", id, "error", errMsg)
}
