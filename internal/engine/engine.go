package engine

import "context"

// Engine is the interface that all folding engines must implement. Each
// engine turns a sequence (plus optional direction hints and protocol
// options) into a serialized structure and a scalar energy.
type Engine interface {
	// Name identifies the engine in logs and API responses.
	Name() string

	// Available reports whether the engine can run in this process. It is
	// checked once at startup and the result is cached by the registry.
	Available() bool

	// Init performs one-time engine setup. It is idempotent; a failure is
	// fatal for the job that triggered it but not for the process.
	Init() error

	// Execute runs the requested protocol and returns the resulting
	// structure and its energy.
	Execute(ctx context.Context, req Request) (Result, error)
}

// Request describes one engine invocation. Fields mirror the job input with
// parameter defaults already applied.
type Request struct {
	JobID            string
	Sequence         string
	Directions       []string
	Protocol         string
	Repeats          int
	Seed             string
	BiasToDirections bool
}

// Result holds the output of a successful engine invocation. Energy is nil
// when the engine does not produce a score.
type Result struct {
	Artifact []byte
	Energy   *float64
}
