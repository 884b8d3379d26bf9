package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"weather-records/internal/store"
)

// Scheduler periodically re-lists records from the records service so the
// facade cache keeps mirroring server state across out-of-band changes.
type Scheduler struct {
	scheduler *gocron.Scheduler
	records   *store.Facade
	interval  time.Duration
}

// New creates a Scheduler. An interval of 0 disables the re-sync job.
func New(records *store.Facade, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		records:   records,
		interval:  interval,
	}
}

// Start schedules the re-sync job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: re-sync disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 10
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.records.List(ctx); err != nil {
			log.Printf("scheduler: records re-sync failed: %v", err)
			return
		}
		log.Println("scheduler: records re-sync completed")
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
