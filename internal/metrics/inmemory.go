package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginsSucceeded        uint64
	LoginsFailed           uint64
	RegistrationsSucceeded uint64
	RegistrationsFailed    uint64

	TasksCreated   uint64
	TasksUpdated   uint64
	TasksDeleted   uint64
	TasksCompleted uint64

	RemindersSent    uint64
	RemindersFailed  uint64
	RemindersSkipped uint64

	SweepCount           uint64
	SweepErrors          uint64
	SweepTasksProcessed  uint64
	SweepDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint
// and is used directly in tests.
type InMemoryRecorder struct {
	loginsSucceeded        uint64
	loginsFailed           uint64
	registrationsSucceeded uint64
	registrationsFailed    uint64

	tasksCreated   uint64
	tasksUpdated   uint64
	tasksDeleted   uint64
	tasksCompleted uint64

	remindersSent    uint64
	remindersFailed  uint64
	remindersSkipped uint64

	sweepCount           uint64
	sweepErrors          uint64
	sweepTasksProcessed  uint64
	sweepDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LoginsSucceeded:        atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:           atomic.LoadUint64(&m.loginsFailed),
		RegistrationsSucceeded: atomic.LoadUint64(&m.registrationsSucceeded),
		RegistrationsFailed:    atomic.LoadUint64(&m.registrationsFailed),
		TasksCreated:           atomic.LoadUint64(&m.tasksCreated),
		TasksUpdated:           atomic.LoadUint64(&m.tasksUpdated),
		TasksDeleted:           atomic.LoadUint64(&m.tasksDeleted),
		TasksCompleted:         atomic.LoadUint64(&m.tasksCompleted),
		RemindersSent:          atomic.LoadUint64(&m.remindersSent),
		RemindersFailed:        atomic.LoadUint64(&m.remindersFailed),
		RemindersSkipped:       atomic.LoadUint64(&m.remindersSkipped),
		SweepCount:             atomic.LoadUint64(&m.sweepCount),
		SweepErrors:            atomic.LoadUint64(&m.sweepErrors),
		SweepTasksProcessed:    atomic.LoadUint64(&m.sweepTasksProcessed),
		SweepDurationTotalNs:   atomic.LoadInt64(&m.sweepDurationTotalNs),
	}
}

// IncLogin increments the login counter for the given outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == StatusSuccess {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncRegistration increments the registration counter for the given outcome.
func (m *InMemoryRecorder) IncRegistration(status string) {
	if status == StatusSuccess {
		atomic.AddUint64(&m.registrationsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.registrationsFailed, 1)
}

// IncTaskCreated increments task created counter.
func (m *InMemoryRecorder) IncTaskCreated() {
	atomic.AddUint64(&m.tasksCreated, 1)
}

// IncTaskUpdated increments task updated counter.
func (m *InMemoryRecorder) IncTaskUpdated() {
	atomic.AddUint64(&m.tasksUpdated, 1)
}

// IncTaskDeleted increments task deleted counter.
func (m *InMemoryRecorder) IncTaskDeleted() {
	atomic.AddUint64(&m.tasksDeleted, 1)
}

// IncTaskCompleted increments task completed counter.
func (m *InMemoryRecorder) IncTaskCompleted() {
	atomic.AddUint64(&m.tasksCompleted, 1)
}

// IncReminder increments the reminder counter for the given outcome.
func (m *InMemoryRecorder) IncReminder(status string) {
	switch status {
	case StatusSuccess:
		atomic.AddUint64(&m.remindersSent, 1)
	case StatusFailed:
		atomic.AddUint64(&m.remindersFailed, 1)
	case StatusSkipped:
		atomic.AddUint64(&m.remindersSkipped, 1)
	}
}

// ObserveSweep records one completed sweep.
func (m *InMemoryRecorder) ObserveSweep(duration time.Duration, processed int) {
	atomic.AddUint64(&m.sweepCount, 1)
	atomic.AddInt64(&m.sweepDurationTotalNs, duration.Nanoseconds())
	if processed > 0 {
		atomic.AddUint64(&m.sweepTasksProcessed, uint64(processed))
	}
}

// IncSweepError increments the failed sweep counter.
func (m *InMemoryRecorder) IncSweepError() {
	atomic.AddUint64(&m.sweepErrors, 1)
}
