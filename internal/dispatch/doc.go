// Package dispatch provides the asynchronous job execution dispatcher. It
// runs a bounded worker pool over an admission queue, guarantees at most one
// concurrent execution per job id, records status transitions and artifacts
// in the store, and publishes completion events for best-effort mirroring.
package dispatch
