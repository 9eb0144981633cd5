// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels shared by the counters below.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncLogin(status string)        // status: "success" or "failed"
	IncRegistration(status string) // status: "success" or "failed"

	// Task management metrics
	IncTaskCreated()
	IncTaskUpdated()
	IncTaskDeleted()
	IncTaskCompleted()

	// Reminder sweep metrics
	IncReminder(status string) // status: "success", "failed", "skipped"
	ObserveSweep(duration time.Duration, processed int)
	IncSweepError()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
