package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/hibiken/asynq"

	"github.com/javiermolinar/quorum/internal/logger"
)

// DefaultSchedule runs cleanup daily at 03:00.
const DefaultSchedule = "0 3 * * *"

// ErrNoRedis is returned when the worker has no Redis address.
var ErrNoRedis = errors.New("worker requires a redis address")

// Config configures the worker.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	Schedule      string // cron spec for the cleanup task
	RetentionDays int
}

// RedisOpt returns the asynq connection options.
func (c Config) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// Worker processes tasks and enqueues the periodic cleanup.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	log       *log.Logger
}

// NewWorker creates a worker. Nothing connects until Run.
func NewWorker(cfg Config, cleaner Cleaner) (*Worker, error) {
	if cfg.RedisAddr == "" {
		return nil, ErrNoRedis
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}

	l := logger.With("component", "worker")
	opt := cfg.RedisOpt()

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Logger:      asynqLogger{l},
	})
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Logger: asynqLogger{l},
	})

	task, err := NewCleanupTask(cfg.RetentionDays)
	if err != nil {
		return nil, err
	}
	entryID, err := scheduler.Register(cfg.Schedule, task)
	if err != nil {
		return nil, fmt.Errorf("registering cleanup schedule %q: %w", cfg.Schedule, err)
	}
	l.Info("cleanup scheduled", "entry", entryID, "cron", cfg.Schedule, "retention_days", cfg.RetentionDays)

	return &Worker{
		server:    server,
		scheduler: scheduler,
		mux:       NewMux(cleaner),
		log:       l,
	}, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer w.scheduler.Shutdown()

	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("starting worker: %w", err)
	}
	w.log.Info("worker started")

	<-ctx.Done()
	w.log.Info("worker stopping")
	w.server.Shutdown()
	return nil
}

// Enqueue submits a one-off cleanup task.
func Enqueue(ctx context.Context, cfg Config) (*asynq.TaskInfo, error) {
	if cfg.RedisAddr == "" {
		return nil, ErrNoRedis
	}
	task, err := NewCleanupTask(cfg.RetentionDays)
	if err != nil {
		return nil, err
	}
	client := asynq.NewClient(cfg.RedisOpt())
	defer client.Close()

	info, err := client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("enqueueing cleanup: %w", err)
	}
	return info, nil
}

// asynqLogger adapts a charm logger to asynq.Logger.
type asynqLogger struct {
	l *log.Logger
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...any)  { a.l.Info(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...any) { a.l.Error(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...any) { a.l.Fatal(fmt.Sprint(args...)) }

var _ asynq.Logger = asynqLogger{}
