package engine

import (
	"context"
	"time"
)

// StubName is the registry name of the stub engine.
const StubName = "stub"

// PlaceholderEnergy is the fixed energy reported by the stub engine.
const PlaceholderEnergy = -10.5

// DefaultStubDelay approximates the processing time of a real invocation.
const DefaultStubDelay = 2 * time.Second

// stubPDB is a minimal, syntactically valid single-residue structure. It
// gives downstream consumers a well-formed artifact shape when the real
// engine cannot run; it is explicitly not a scientific result.
const stubPDB = `ATOM      1  N   GLY A   1       0.000   0.000   0.000  1.00  0.00           N
ATOM      2  CA  GLY A   1       1.458   0.000   0.000  1.00  0.00           C
ATOM      3  C   GLY A   1       1.958   1.410   0.000  1.00  0.00           C
ATOM      4  O   GLY A   1       1.158   2.330   0.000  1.00  0.00           O
TER
END
`

// Compile-time interface satisfaction check.
var _ Engine = (*Stub)(nil)

// Stub is the degraded-mode engine. It is always available and returns a
// fixed placeholder structure and energy after a simulated delay.
type Stub struct {
	delay time.Duration
}

// NewStub creates a stub engine with the given simulated processing delay.
// A non-positive delay disables the wait.
func NewStub(delay time.Duration) *Stub {
	return &Stub{delay: delay}
}

// Name implements Engine.
func (s *Stub) Name() string { return StubName }

// Available implements Engine; the stub can always run.
func (s *Stub) Available() bool { return true }

// Init implements Engine; the stub needs no setup.
func (s *Stub) Init() error { return nil }

// Execute waits out the simulated delay and returns the placeholder result.
func (s *Stub) Execute(ctx context.Context, _ Request) (Result, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	energy := PlaceholderEnergy
	return Result{
		Artifact: []byte(stubPDB),
		Energy:   &energy,
	}, nil
}
