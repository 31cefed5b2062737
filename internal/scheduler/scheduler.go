// Package scheduler runs the periodic late-contribution sweep.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper marks overdue contributions late and reports how many changed.
type Sweeper interface {
	SweepLate(ctx context.Context) (int64, error)
}

// Scheduler runs a Sweeper on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	timeout time.Duration
}

// New parses spec (standard five-field cron syntax) and prepares the sweep
// job. The job does not run until Run is called.
func New(spec string, sweeper Sweeper) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper: sweeper,
		timeout: 5 * time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running sweep to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	slog.Info("Sweep scheduler started", "next_run", s.Next())
	<-ctx.Done()
	<-s.cron.Stop().Done()
	slog.Info("Sweep scheduler stopped")
	return nil
}

// Next reports when the sweep runs next. It is zero before Run.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.sweeper.SweepLate(ctx)
	if err != nil {
		slog.Error("Late sweep failed", "error", err)
		return
	}
	slog.Info("Late sweep finished", "marked_late", n, "duration", time.Since(start))
}
