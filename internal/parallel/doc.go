// Package parallel holds the two concurrency shapes of a landscape build:
// MapBounded, a fixed-ceiling fan-out that isolates per-item failures, and
// Join2, a cancel-on-first-error join of two independent producers.
package parallel
