// Package scheduler runs the periodic settlement and reconciliation jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/infrastructure/metrics"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler wraps a seconds-resolution cron. Runs of the same job never
// overlap; a run still in progress causes the next tick to be skipped.
type Scheduler struct {
	cron       *cron.Cron
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	jobTimeout time.Duration
	baseCtx    context.Context
}

// New creates a Scheduler. jobTimeout bounds each run; zero means no bound.
func New(logger zerolog.Logger, m *metrics.Metrics, jobTimeout time.Duration) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:     logger,
		metrics:    m,
		jobTimeout: jobTimeout,
		baseCtx:    context.Background(),
	}
}

// Add registers job under name on the given cron spec.
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.logger.Info().Str("job", name).Str("spec", spec).Msg("job scheduled")
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx := s.baseCtx
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := job(ctx)

	status := "ok"
	if err != nil {
		status = "error"
		s.logger.Error().Err(err).Str("job", name).Dur("duration", time.Since(start)).Msg("job failed")
	} else {
		s.logger.Debug().Str("job", name).Dur("duration", time.Since(start)).Msg("job finished")
	}

	if s.metrics != nil {
		s.metrics.SchedulerJobs.WithLabelValues(name, status).Inc()
	}
}

// Run starts the cron and blocks until ctx is done, then waits for running
// jobs to return. Job contexts are cancelled together with ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	s.baseCtx = ctx
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
	return nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
