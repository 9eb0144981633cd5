package model

import "time"

// ReminderRecord marks that the deadline reminder for a task has been sent.
// At most one exists per task.
type ReminderRecord struct {
	ID     string    `json:"id"`
	TaskID string    `json:"task_id"`
	SentAt time.Time `json:"sent_at"`
}
