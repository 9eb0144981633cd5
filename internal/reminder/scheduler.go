// Package reminder sends one email per task whose due date is near or past.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/robfig/cron/v3"
	"github.com/todolist/todolist/internal/mail"
	"github.com/todolist/todolist/internal/metrics"
	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/repository"
)

const (
	// DefaultInterval is the time between sweeps.
	DefaultInterval = time.Hour
	// DefaultLookahead is how far ahead of a due date a reminder goes out.
	DefaultLookahead = 24 * time.Hour
	// commitTimeout bounds the final write of a sweep's records.
	commitTimeout = 30 * time.Second
	// sendTimeout bounds a single email once it has started.
	sendTimeout = time.Minute
)

var (
	// ErrSweepInProgress is returned when a sweep is requested while one is running.
	ErrSweepInProgress = errors.New("reminder sweep already in progress")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("reminder scheduler already started")
)

// Store is the persistence the scheduler needs. Implemented by *repository.Repository.
type Store interface {
	ListTasksDueWithoutReminder(ctx context.Context, threshold time.Time) ([]*model.Task, error)
	ReminderExists(ctx context.Context, taskID string) (bool, error)
	CreateReminders(ctx context.Context, recs []*model.ReminderRecord) (int64, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Config controls scheduling. Schedule, when set, is a standard cron
// expression and takes precedence over Interval.
type Config struct {
	Interval  time.Duration
	Schedule  string
	Lookahead time.Duration
	Location  *time.Location
}

// State is the lifecycle state of a Scheduler.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Due      int
	Sent     int
	Failed   int
	Skipped  int
	Recorded int64
}

// Scheduler periodically emails owners of tasks that are due within the
// lookahead window and records each reminder so it is sent only once.
type Scheduler struct {
	store   Store
	gateway mail.Gateway
	cfg     Config
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
	newID   func() string

	sweepMu sync.Mutex

	mu     sync.Mutex
	state  State
	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler. Zero durations in cfg fall back to defaults.
func New(store Store, gateway mail.Gateway, cfg Config, logger *slog.Logger, recorder metrics.Recorder) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = DefaultLookahead
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return &Scheduler{
		store:   store,
		gateway: gateway,
		cfg:     cfg,
		logger:  logger.With("component", "reminder.scheduler"),
		metrics: recorder,
		now:     time.Now,
		newID:   func() string { return ulid.Make().String() },
		state:   StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StateName returns State().String() for health reporting.
func (s *Scheduler) StateName() string {
	return s.State().String()
}

func (s *Scheduler) setState(from []State, to State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range from {
		if s.state == f {
			s.state = to
			return
		}
	}
}

// Sweep runs one pass: it finds tasks due by now+lookahead that have no
// reminder, emails their owners and records the successful sends in one
// batch. Cancelling ctx stops the pass between tasks; reminders already
// sent are still recorded.
func (s *Scheduler) Sweep(ctx context.Context) (SweepResult, error) {
	if !s.sweepMu.TryLock() {
		return SweepResult{}, ErrSweepInProgress
	}
	defer s.sweepMu.Unlock()

	s.setState([]State{StateIdle}, StateRunning)
	defer s.setState([]State{StateRunning}, StateIdle)

	start := time.Now()
	now := s.now().UTC()
	threshold := now.Add(s.cfg.Lookahead)

	var result SweepResult

	tasks, err := s.store.ListTasksDueWithoutReminder(ctx, threshold)
	if err != nil {
		return result, fmt.Errorf("list due tasks: %w", err)
	}
	result.Due = len(tasks)

	var records []*model.ReminderRecord
	var cancelErr error

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}

		if !task.DueWithin(now, s.cfg.Lookahead) {
			s.logger.Warn("store returned a task outside the lookahead window", "task_id", task.ID)
			s.skip(&result)
			continue
		}

		if s.remind(ctx, task, now, &result) {
			records = append(records, &model.ReminderRecord{
				ID:     s.newID(),
				TaskID: task.ID,
				SentAt: now,
			})
		}
	}

	if len(records) > 0 {
		commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
		inserted, err := s.store.CreateReminders(commitCtx, records)
		cancel()
		if err != nil {
			// Unrecorded tasks are picked up again by the next sweep.
			return result, fmt.Errorf("record reminders: %w", err)
		}
		result.Recorded = inserted
	}

	s.metrics.ObserveSweep(time.Since(start), result.Sent+result.Failed+result.Skipped)

	if cancelErr != nil {
		return result, cancelErr
	}
	return result, nil
}

// remind sends the reminder for one task and reports whether it was sent.
func (s *Scheduler) remind(ctx context.Context, task *model.Task, now time.Time, result *SweepResult) bool {
	log := s.logger.With("task_id", task.ID)

	exists, err := s.store.ReminderExists(ctx, task.ID)
	if err != nil {
		log.Warn("reminder lookup failed", "error", err)
		s.skip(result)
		return false
	}
	if exists {
		s.skip(result)
		return false
	}

	user, err := s.store.GetUserByID(ctx, task.UserID)
	if err != nil || user.Email == "" {
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			log.Warn("owner lookup failed", "user_id", task.UserID, "error", err)
		} else {
			log.Warn("task owner not found or has no email", "user_id", task.UserID)
		}
		s.skip(result)
		return false
	}

	subject, body, err := compose(task, user, now)
	if err != nil {
		log.Error("compose reminder failed", "error", err)
		result.Failed++
		s.metrics.IncReminder(metrics.StatusFailed)
		return false
	}

	// Cancellation stops the sweep between tasks. An email already handed to
	// the transport is allowed to finish so it can be recorded.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	err = s.gateway.Send(sendCtx, user.Email, subject, body)
	cancel()
	if err != nil {
		log.Warn("reminder delivery failed", "user_id", user.ID, "error", err)
		result.Failed++
		s.metrics.IncReminder(metrics.StatusFailed)
		return false
	}

	log.Info("reminder sent", "user_id", user.ID, "overdue", task.IsOverdue(now))
	result.Sent++
	s.metrics.IncReminder(metrics.StatusSuccess)
	return true
}

func (s *Scheduler) skip(result *SweepResult) {
	result.Skipped++
	s.metrics.IncReminder(metrics.StatusSkipped)
}

// Start schedules sweeps and runs the first one immediately in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil || s.state == StateStopped {
		return ErrAlreadyStarted
	}

	cl := cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithLocation(s.cfg.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	spec := s.cfg.Schedule
	if spec == "" {
		spec = fmt.Sprintf("@every %s", s.cfg.Interval)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if _, err := c.AddFunc(spec, func() { s.runScheduled(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule reminder sweep %q: %w", spec, err)
	}

	s.cron = c
	s.cancel = cancel
	c.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("initial sweep panicked", "panic", r)
			}
		}()
		s.runScheduled(runCtx)
	}()

	s.logger.Info("reminder scheduler started",
		"schedule", spec,
		"lookahead", s.cfg.Lookahead,
	)
	return nil
}

// Stop cancels an in-flight sweep, stops scheduling and waits for running
// sweeps to finish or ctx to expire. A sweep stops before its next task; the
// email in progress completes and is recorded. It matches server.ShutdownFunc.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.cron == nil {
		s.state = StateStopped
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopping
	s.cancel()
	cronDone := s.cron.Stop()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("wait for reminder sweep: %w", ctx.Err())
	}

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	result, err := s.Sweep(ctx)
	switch {
	case errors.Is(err, ErrSweepInProgress):
		s.logger.Debug("sweep skipped, previous sweep still running")
		return
	case errors.Is(err, context.Canceled):
		s.logger.Info("sweep cancelled", "sent", result.Sent)
		return
	case err != nil:
		s.metrics.IncSweepError()
		s.logger.Error("reminder sweep failed", "error", err)
		return
	}

	s.logger.Info("reminder sweep completed",
		"due", result.Due,
		"sent", result.Sent,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"recorded", result.Recorded,
	)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
