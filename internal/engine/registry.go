package engine

import (
	"fmt"
	"sort"
	"sync"
)

// EngineInfo pairs an engine name with its cached availability.
type EngineInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Registry holds registered engines and resolves which one runs a job.
// Availability is probed once, on first resolve, and cached for the life of
// the process.
type Registry struct {
	mu        sync.RWMutex
	engines   map[string]Engine
	preferred string
	fallback  string

	probeOnce sync.Once
	available map[string]bool
}

// NewRegistry creates a registry that prefers the named engine and falls
// back to fallbackName when the preferred engine reports unavailable.
func NewRegistry(preferred, fallbackName string) *Registry {
	return &Registry{
		engines:   make(map[string]Engine),
		preferred: preferred,
		fallback:  fallbackName,
	}
}

// Register adds an engine to the registry under the given name.
func (r *Registry) Register(name string, e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[name] = e
}

// probe caches each engine's availability.
func (r *Registry) probe() {
	r.probeOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.available = make(map[string]bool, len(r.engines))
		for name, e := range r.engines {
			r.available[name] = e.Available()
		}
	})
}

// Resolve returns the engine to run a job on: the preferred engine when it
// is registered and available, otherwise the fallback. An unavailable
// preferred engine is a normal degraded-mode condition, not an error; an
// error is returned only when no usable engine is registered.
func (r *Registry) Resolve() (Engine, error) {
	r.probe()

	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.engines[r.preferred]; ok && r.available[r.preferred] {
		return e, nil
	}
	if e, ok := r.engines[r.fallback]; ok && r.available[r.fallback] {
		return e, nil
	}
	return nil, fmt.Errorf("no usable engine registered (preferred %q, fallback %q)", r.preferred, r.fallback)
}

// List returns information about all registered engines, sorted by name
// for a stable API response.
func (r *Registry) List() []EngineInfo {
	r.probe()

	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]EngineInfo, 0, len(r.engines))
	for name := range r.engines {
		infos = append(infos, EngineInfo{
			Name:      name,
			Available: r.available[name],
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}
