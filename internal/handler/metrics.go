package handler

import (
	"fmt"
	"net/http"

	"github.com/todolist/todolist/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "todolist_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "todolist_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "todolist_registrations_total{status=\"success\"} %d\n", snap.RegistrationsSucceeded)
	writeMetric(w, "todolist_registrations_total{status=\"failed\"} %d\n", snap.RegistrationsFailed)

	writeMetric(w, "todolist_tasks_created_total %d\n", snap.TasksCreated)
	writeMetric(w, "todolist_tasks_updated_total %d\n", snap.TasksUpdated)
	writeMetric(w, "todolist_tasks_deleted_total %d\n", snap.TasksDeleted)
	writeMetric(w, "todolist_tasks_completed_total %d\n", snap.TasksCompleted)

	writeMetric(w, "todolist_reminders_total{status=\"success\"} %d\n", snap.RemindersSent)
	writeMetric(w, "todolist_reminders_total{status=\"failed\"} %d\n", snap.RemindersFailed)
	writeMetric(w, "todolist_reminders_total{status=\"skipped\"} %d\n", snap.RemindersSkipped)

	writeMetric(w, "todolist_reminder_sweeps_total %d\n", snap.SweepCount)
	writeMetric(w, "todolist_reminder_sweep_errors_total %d\n", snap.SweepErrors)
	writeMetric(w, "todolist_reminder_sweep_tasks_total %d\n", snap.SweepTasksProcessed)
	writeMetric(w, "todolist_reminder_sweep_duration_seconds_count %d\n", snap.SweepCount)
	writeMetric(w, "todolist_reminder_sweep_duration_seconds_sum %.6f\n", float64(snap.SweepDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
