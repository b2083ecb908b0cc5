// Package worker implements the capture queue's item lifecycle state
// machine: the dispatch loop that consumes queue change events and the
// per-item processor that drives each capture from waiting to a terminal
// state, isolating recoverable failures per item and escalating fatal
// misconfiguration to process shutdown.
package worker
