package tasks

import "time"

// Config tunes the geocoding task queue. Per-queue retry and timeout
// policy lives on each task's Config(); these knobs cover the workers
// and the shared task database.
type Config struct {
	// Workers is how many tasks may run concurrently. Keep it low:
	// every geocode task talks to external services.
	Workers int

	// ReleaseAfter is how long a claimed task may sit before it is
	// handed back to the queue (worker died mid-geocode). Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often completed task rows are pruned
	// from the task database. Default: 1h
	CleanupInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: 1 * time.Hour,
	}
}
