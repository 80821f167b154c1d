package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/dto"
	"github.com/noah-isme/lms-api/pkg/jobs"
)

// JobReminderSweep is the job type enqueued on every tick.
const JobReminderSweep = "reminder_sweep"

const (
	defaultSchedule   = "*/5 * * * *"
	defaultJobTimeout = 2 * time.Minute
)

// Sweeper runs one reminder pass.
type Sweeper interface {
	Sweep(ctx context.Context) (string, *dto.SweepResult, error)
}

// Config tunes the in-process reminder schedule.
type Config struct {
	// Schedule is a standard five-field cron expression.
	Schedule   string
	MaxRetries int
	RetryDelay time.Duration
	// Timeout bounds one sweep attempt.
	Timeout time.Duration
}

// ReminderScheduler triggers reminder sweeps on a cron schedule. Ticks are
// handed to a single-worker queue with room for one pending job, so a slow
// sweep never overlaps the next one and missed ticks collapse into one run.
type ReminderScheduler struct {
	cron    *cron.Cron
	queue   *jobs.Queue
	sweeper Sweeper
	logger  *zap.Logger
}

// NewReminderScheduler validates the schedule and wires the worker queue.
func NewReminderScheduler(sweeper Sweeper, cfg Config, logger *zap.Logger) (*ReminderScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = defaultSchedule
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultJobTimeout
	}

	s := &ReminderScheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  logger,
	}
	s.queue = jobs.NewQueue("reminders", s.run, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 1,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		JobTimeout: cfg.Timeout,
		Logger:     logger,
		OnExhausted: func(job jobs.Job, err error) {
			logger.Error("reminder sweep abandoned", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempt), zap.Error(err))
		},
	})

	if _, err := s.cron.AddFunc(cfg.Schedule, s.trigger); err != nil {
		return nil, fmt.Errorf("parse reminder schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

// Start launches the worker and the cron clock.
func (s *ReminderScheduler) Start(ctx context.Context) {
	s.queue.Start(ctx)
	s.cron.Start()
	s.logger.Info("reminder scheduler started")
}

// Stop halts the clock, waits for a running tick to return, then drains the worker.
func (s *ReminderScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.queue.Stop()
}

func (s *ReminderScheduler) trigger() {
	err := s.queue.Enqueue(jobs.Job{Type: JobReminderSweep})
	switch {
	case err == nil:
	case errors.Is(err, jobs.ErrQueueFull):
		s.logger.Debug("reminder sweep already pending")
	default:
		s.logger.Warn("reminder sweep not enqueued", zap.Error(err))
	}
}

func (s *ReminderScheduler) run(ctx context.Context, job jobs.Job) error {
	message, result, err := s.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("message", message)}
	if result != nil {
		fields = append(fields, zap.Int("notifications", result.Notifications))
	}
	s.logger.Info("reminder sweep finished", fields...)
	return nil
}
