package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/youpolonia/cms-sub038/internal/service"
	"github.com/youpolonia/cms-sub038/pkg/logger"
)

// Broker owns the cron scheduler for background jobs. The only periodic job
// today is the due-event sweep.
type Broker struct {
	cron      *cron.Cron
	logger    zerolog.Logger
	processor *service.DueEventService
}

// NewBroker creates the broker with panic recovery and per-run logging
// around every job. Overlapping runs of the same job are delayed, not
// stacked.
func NewBroker(processor *service.DueEventService) *Broker {
	log := logger.GetLogger().With().Str("system", "task_broker").Logger()

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(log),
			NewLoggingWrapper(log),
			cron.DelayIfStillRunning(cron.DefaultLogger),
		),
	)

	return &Broker{
		cron:      c,
		logger:    log,
		processor: processor,
	}
}

// RegisterSweep adds the due-event sweep on the given cron spec
// (six fields, seconds first).
func (b *Broker) RegisterSweep(spec string) error {
	job := NewDueSweepJob(b.processor, b.logger)
	if _, err := b.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("register due sweep %q: %w", spec, err)
	}
	b.logger.Info().Str("schedule", spec).Msg("registered due sweep")
	return nil
}

// Start begins running registered jobs.
func (b *Broker) Start() {
	b.cron.Start()
	b.logger.Info().Msg("task broker started")
}

// Stop waits for running jobs to finish.
func (b *Broker) Stop() {
	ctx := b.cron.Stop()
	<-ctx.Done()
	b.logger.Info().Msg("task broker stopped")
}

// DueSweepJob promotes scheduled events whose publish time has passed.
type DueSweepJob struct {
	processor *service.DueEventService
	logger    zerolog.Logger
}

// NewDueSweepJob creates the sweep job.
func NewDueSweepJob(processor *service.DueEventService, logger zerolog.Logger) *DueSweepJob {
	return &DueSweepJob{processor: processor, logger: logger}
}

// Name returns the job name for log correlation.
func (j *DueSweepJob) Name() string {
	return "DueSweepJob"
}

// Run executes one sweep against the current UTC time.
func (j *DueSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	processed, err := j.processor.ProcessDueEvents(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error().Err(err).Msg("due sweep failed")
		return
	}
	if processed > 0 {
		j.logger.Info().Int("processed", processed).Msg("due sweep published events")
	}
}
