package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/todolist/todolist/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// MigrationFiles returns the migration files with the given suffix
// ("up.sql" or "down.sql") in ascending version order.
func MigrationFiles(suffix string) ([]string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(root, "migrations", "*."+suffix))
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no %s migrations found", suffix)
	}

	sort.Strings(matches)
	return matches, nil
}

// ResetSchema drops every table and re-applies all migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	downs, err := MigrationFiles("down.sql")
	if err != nil {
		return err
	}
	for i := len(downs) - 1; i >= 0; i-- {
		if err := ApplyFile(ctx, pool, downs[i]); err != nil {
			return err
		}
	}

	ups, err := MigrationFiles("up.sql")
	if err != nil {
		return err
	}
	for _, path := range ups {
		if err := ApplyFile(ctx, pool, path); err != nil {
			return err
		}
	}

	return nil
}

// ApplyFile executes a single SQL file.
func ApplyFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Int64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

// NewTestUser creates a user with sensible defaults. The hash is not a real
// password hash; use a PasswordHasher when login must succeed.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := UniqueID("user")
	return &model.User{
		ID:           id,
		Username:     "user",
		Email:        strings.ToLower(id) + "@example.com",
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestCategory creates a category with sensible defaults.
func NewTestCategory(t testing.TB, name string) *model.Category {
	t.Helper()
	return &model.Category{
		ID:        UniqueID("cat"),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestStatus creates a status with sensible defaults.
func NewTestStatus(t testing.TB, name string, completed bool) *model.Status {
	t.Helper()
	return &model.Status{
		ID:          UniqueID("status"),
		Name:        name,
		IsCompleted: completed,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestTask creates a task owned by userID and due at dueDate.
func NewTestTask(t testing.TB, userID, categoryID, statusID string, dueDate time.Time) *model.Task {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Task{
		ID:          UniqueID("task"),
		Title:       "Test task",
		Description: "Created by a test",
		DueDate:     dueDate.UTC().Truncate(time.Microsecond),
		CategoryID:  categoryID,
		StatusID:    statusID,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
