// Package scheduler triggers report generation on a fixed interval.
package scheduler

import (
	"context"
	"log"
	"time"

	"uptime-report-backend/internal/report"
)

// Starter starts a report run.
type Starter interface {
	Start(ctx context.Context) (report.StartResult, error)
}

// Service runs the periodic trigger loop.
type Service struct {
	starter  Starter
	interval time.Duration
}

// NewService creates a scheduler. A non-positive interval disables it.
func NewService(starter Starter, interval time.Duration) *Service {
	return &Service{starter: starter, interval: interval}
}

// Run triggers a report every interval until ctx is done. The first run
// happens one interval after start.
func (s *Service) Run(ctx context.Context) {
	if s.interval <= 0 {
		log.Println("Report scheduler is disabled. Not starting.")
		return
	}
	log.Printf("Starting report scheduler, interval %s", s.interval)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Report scheduler shutting down.")
			return
		case <-timer.C:
			s.TriggerOnce(ctx)
			timer.Reset(s.interval)
		}
	}
}

// TriggerOnce starts one run and logs its outcome. A run already in flight
// is left alone.
func (s *Service) TriggerOnce(ctx context.Context) {
	res, err := s.starter.Start(ctx)
	switch {
	case err != nil:
		log.Printf("Scheduled report failed: %v", err)
	case res.AlreadyRunning:
		log.Printf("Scheduled report skipped, %s is still running", res.ReportID)
	default:
		log.Printf("Scheduled report %s complete with %d rows", res.ReportID, res.Rows)
	}
}
