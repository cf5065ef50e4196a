package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Job status constants.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Protocol constants.
const (
	ProtocolRelax = "relax"
	ProtocolFold  = "fold"
	ProtocolScore = "score"
)

// DefaultRepeats is the repeat count applied when a submission omits it.
const DefaultRepeats = 1

// validTransitions maps each status to the set of statuses it may transition to.
// Succeeded and failed are terminal.
var validTransitions = map[string]map[string]bool{
	StatusQueued: {
		StatusRunning: true,
		StatusFailed:  true,
	},
	StatusRunning: {
		StatusSucceeded: true,
		StatusFailed:    true,
	},
}

// ValidTransition reports whether transitioning from one status to another is allowed.
func ValidTransition(from, to string) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusSucceeded || status == StatusFailed
}

// ValidProtocol reports whether the given protocol name is recognized.
func ValidProtocol(p string) bool {
	switch p {
	case ProtocolRelax, ProtocolFold, ProtocolScore:
		return true
	}
	return false
}

// Seed is an optional reproducibility seed. Callers may send it as either a
// JSON string or a JSON number; both are kept as their decimal string form.
type Seed string

// UnmarshalJSON accepts a string or an integer.
func (s *Seed) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty seed value")
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Seed(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("seed must be a string or integer: %w", err)
	}
	*s = Seed(n.String())
	return nil
}

// Params holds the recognized job options with their defaults applied at
// submission time.
type Params struct {
	Protocol         string `json:"protocol,omitempty"`
	Repeats          int    `json:"repeats,omitempty"`
	Seed             Seed   `json:"seed,omitempty"`
	BiasToDirections *bool  `json:"biasToDirections,omitempty"`
}

// Normalize fills zero-valued options with their defaults and lowercases the
// protocol name. It does not validate; see Validate.
func (p *Params) Normalize() {
	if p.Protocol == "" {
		p.Protocol = ProtocolRelax
	}
	p.Protocol = strings.ToLower(p.Protocol)
	if p.Repeats == 0 {
		p.Repeats = DefaultRepeats
	}
	if p.BiasToDirections == nil {
		bias := true
		p.BiasToDirections = &bias
	}
}

// Validate checks the normalized options.
func (p *Params) Validate() error {
	if !ValidProtocol(p.Protocol) {
		return fmt.Errorf("unknown protocol %q", p.Protocol)
	}
	if p.Repeats < 1 {
		return fmt.Errorf("repeats must be a positive integer, got %d", p.Repeats)
	}
	return nil
}

// Bias reports the effective biasToDirections value.
func (p *Params) Bias() bool {
	return p.BiasToDirections == nil || *p.BiasToDirections
}

// JobInput is the immutable description of a submitted job.
type JobInput struct {
	JobID      string   `json:"jobId"`
	Sequence   string   `json:"sequence"`
	Directions []string `json:"directions,omitempty"`
	Params     Params   `json:"params"`
}

// StatusRecord is the mutable per-job status. The dispatcher is the single
// authoritative writer once a job has been handed off.
type StatusRecord struct {
	JobID        string `json:"jobId"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
