// Package scheduler keeps the pollend forecast store warm with periodic
// refreshes.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/couchcryptid/dwd-pollen/internal/adapter/kafka"
)

// ForecastSource is the client surface the refresh job drives. Implemented
// by client.AsyncClient.
type ForecastSource interface {
	Update(ctx context.Context) error
	AllergenNames(ctx context.Context) ([]string, error)
	LastUpdate() time.Time
	NextUpdate() time.Time
	RegionCount() int
}

// Announcer publishes refresh announcements. Nil-able; refresh works
// without one.
type Announcer interface {
	PublishUpdate(ctx context.Context, ann kafka.Announcement) error
}

// Scheduler runs the periodic refresh job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    ForecastSource
	announcer Announcer
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a refresh scheduler. announcer may be nil.
func New(source ForecastSource, announcer Announcer, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		announcer: announcer,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the refresh job and starts the scheduler in the
// background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.refresh); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.logger.Info("refresh scheduler started", "interval", s.interval)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.source.Update(ctx); err != nil {
		s.logger.Error("scheduled refresh failed", "error", err)
		return
	}
	s.logger.Info("scheduled refresh completed", "last_update", s.source.LastUpdate())

	if s.announcer == nil {
		return
	}

	allergens, err := s.source.AllergenNames(ctx)
	if err != nil {
		s.logger.Warn("announcement skipped", "error", err)
		return
	}
	ann := kafka.Announcement{
		LastUpdate: s.source.LastUpdate(),
		NextUpdate: s.source.NextUpdate(),
		Regions:    s.source.RegionCount(),
		Allergens:  allergens,
	}
	if err := s.announcer.PublishUpdate(ctx, ann); err != nil {
		s.logger.Warn("announcement publish failed", "error", err)
	}
}
