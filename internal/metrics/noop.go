package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration(status string) {}

// IncTaskCreated is a no-op.
func (n *NoopRecorder) IncTaskCreated() {}

// IncTaskUpdated is a no-op.
func (n *NoopRecorder) IncTaskUpdated() {}

// IncTaskDeleted is a no-op.
func (n *NoopRecorder) IncTaskDeleted() {}

// IncTaskCompleted is a no-op.
func (n *NoopRecorder) IncTaskCompleted() {}

// IncReminder is a no-op.
func (n *NoopRecorder) IncReminder(status string) {}

// ObserveSweep is a no-op.
func (n *NoopRecorder) ObserveSweep(duration time.Duration, processed int) {}

// IncSweepError is a no-op.
func (n *NoopRecorder) IncSweepError() {}
