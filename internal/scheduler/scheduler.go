package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/air-quality-collector/internal/airquality"
)

// Scheduler periodically runs full collection passes over the registry.
type Scheduler struct {
	scheduler *gocron.Scheduler
	collector *airquality.Collector
	interval  time.Duration
	log       *zap.Logger
}

// New creates a Scheduler around the given collector.
func New(collector *airquality.Collector, interval time.Duration, log *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// Runs are sequential by design; never let them overlap.
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		collector: collector,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		tally := s.collector.CollectAll(context.Background())
		s.log.Info("scheduled collection completed",
			zap.Int("succeeded", tally.Succeeded),
			zap.Int("failed", tally.Failed),
		)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
