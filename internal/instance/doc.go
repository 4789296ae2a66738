// Package instance enforces a single running shell per user.
//
// The first process to bind the instance socket becomes the primary and
// serves a small HTTP API on it:
//
//	POST /activate  a later launch asks the primary to surface its window
//	GET  /health    liveness of the primary
//	GET  /metrics   Prometheus metrics of the primary
//
// A later launch fails Acquire with ErrNotPrimary, calls Client.Activate and
// exits. Launchers serialise on a sibling lock file while binding.
// A socket left behind by a crashed primary refuses connections and is
// reclaimed.
package instance
