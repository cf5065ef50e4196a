package engine

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestStubExecute(t *testing.T) {
	s := NewStub(0)

	res, err := s.Execute(context.Background(), Request{JobID: "j1", Sequence: "AAAA"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Artifact) == 0 {
		t.Fatal("artifact is empty")
	}
	if res.Energy == nil || *res.Energy != PlaceholderEnergy {
		t.Errorf("energy = %v, want %v", res.Energy, PlaceholderEnergy)
	}

	pdb := string(res.Artifact)
	if !strings.HasPrefix(pdb, "ATOM") {
		t.Errorf("artifact does not start with ATOM record:\n%s", pdb)
	}
	if !strings.Contains(pdb, "TER") || !strings.Contains(pdb, "END") {
		t.Errorf("artifact missing TER/END records:\n%s", pdb)
	}
}

func TestStubDelay(t *testing.T) {
	s := NewStub(50 * time.Millisecond)

	start := time.Now()
	if _, err := s.Execute(context.Background(), Request{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Execute returned after %v, want >= 50ms", elapsed)
	}
}

func TestStubCancellation(t *testing.T) {
	s := NewStub(10 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Execute(ctx, Request{})
	if err == nil {
		t.Fatal("expected context error, got nil")
	}
}
