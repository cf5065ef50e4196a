// Package engine defines the common interface that folding engines must
// implement, the registry that selects between them, and the stub engine
// used for degraded-mode operation, along with the domain types exchanged
// between the execution dispatcher and engine implementations.
package engine
