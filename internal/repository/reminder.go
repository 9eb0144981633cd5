package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/todolist/todolist/internal/model"
)

// ReminderExists reports whether a reminder was already recorded for the task.
func (r *Repository) ReminderExists(ctx context.Context, taskID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM task_reminders WHERE task_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, taskID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reminder existence: %w", err)
	}

	return exists, nil
}

// CreateReminders records a sweep's reminders in one transaction and returns
// how many rows were inserted. Tasks that already have a record, or that were
// deleted mid-sweep, are skipped.
func (r *Repository) CreateReminders(ctx context.Context, recs []*model.ReminderRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	ids := make([]string, len(recs))
	taskIDs := make([]string, len(recs))
	sentAts := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
		taskIDs[i] = rec.TaskID
		sentAts[i] = rec.SentAt.UTC().Format(time.RFC3339Nano)
	}

	query := `
		INSERT INTO task_reminders (id, task_id, sent_at)
		SELECT v.id, v.task_id, v.sent_at
		FROM unnest($1::text[], $2::text[], $3::timestamptz[]) AS v(id, task_id, sent_at)
		WHERE EXISTS (SELECT 1 FROM tasks t WHERE t.id = v.task_id)
		ON CONFLICT (task_id) DO NOTHING
	`

	var inserted int64
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, pq.Array(ids), pq.Array(taskIDs), pq.Array(sentAts))
		if err != nil {
			return fmt.Errorf("failed to insert reminders: %w", err)
		}
		inserted = result.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}
