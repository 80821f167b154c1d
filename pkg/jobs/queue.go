package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Enqueue failures. Callers that coalesce work treat ErrQueueFull as "already pending".
var (
	ErrNotStarted = errors.New("queue not started")
	ErrStopped    = errors.New("queue stopped")
	ErrQueueFull  = errors.New("queue full")
)

// Job is a unit of background work.
type Job struct {
	ID         string
	Type       string
	Payload    interface{}
	Attempt    int
	EnqueuedAt time.Time
}

// Handler processes a job. A non-nil error schedules a retry.
type Handler func(context.Context, Job) error

// QueueConfig tunes the worker pool.
type QueueConfig struct {
	Workers    int
	BufferSize int
	// MaxRetries is the number of re-deliveries after the first failure. Zero disables retries.
	MaxRetries int
	// RetryDelay is the wait before the first retry; each later retry doubles it up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	// JobTimeout bounds a single attempt. Zero leaves attempts unbounded.
	JobTimeout time.Duration
	Logger     *zap.Logger
	// OnExhausted runs once a job has failed its final attempt.
	OnExhausted func(Job, error)
}

// Queue dispatches jobs to a fixed set of goroutines. Enqueue never blocks.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs chan Job

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewQueue builds a queue; call Start before Enqueue.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MaxRetryDelay < cfg.RetryDelay {
		cfg.MaxRetryDelay = cfg.RetryDelay * 8
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Later calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	q.started = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop cancels in-flight attempts and pending retries, then waits for every goroutine.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("queue stopped")
}

// Enqueue adds job without blocking. It fills in ID and EnqueuedAt when unset.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx, started := q.ctx, q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("%s: %w", q.name, ErrNotStarted)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", q.name, ErrStopped)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.attempt(job); err != nil {
				q.retry(job, err)
			}
		}
	}
}

func (q *Queue) attempt(job Job) error {
	ctx := q.ctx
	if q.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.cfg.JobTimeout)
		defer cancel()
	}
	return q.handler(ctx, job)
}

// backoff returns the wait before re-delivering a job that has failed attempt times.
func (q *Queue) backoff(attempt int) time.Duration {
	delay := q.cfg.RetryDelay
	for i := 1; i < attempt && delay < q.cfg.MaxRetryDelay; i++ {
		delay *= 2
	}
	if delay > q.cfg.MaxRetryDelay {
		delay = q.cfg.MaxRetryDelay
	}
	return delay
}

func (q *Queue) retry(job Job, err error) {
	job.Attempt++
	log := q.logger.With(zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt))
	if job.Attempt > q.cfg.MaxRetries {
		log.Error("job exhausted retries", zap.Error(err))
		if q.cfg.OnExhausted != nil {
			q.cfg.OnExhausted(job, err)
		}
		return
	}

	delay := q.backoff(job.Attempt)
	log.Warn("job failed, retrying", zap.Duration("delay", delay), zap.Error(err))

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			if err := q.Enqueue(job); err != nil {
				log.Error("requeue failed", zap.Error(err))
			}
		}
	}()
}
