// Package scheduler triggers ingestion runs on a 5-field cron schedule and
// once at process start. The schedule can be swapped at runtime when the
// operator saves new settings.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner is the work triggered on each schedule tick.
type Runner interface {
	Run(ctx context.Context) error
}

type Scheduler struct {
	runner     Runner
	runTimeout time.Duration
	cron       *cron.Cron

	mu       sync.Mutex
	entryID  cron.EntryID
	hasEntry bool
}

func New(runner Runner, runTimeout time.Duration) *Scheduler {
	return &Scheduler{
		runner:     runner,
		runTimeout: runTimeout,
		cron:       cron.New(),
	}
}

// Validate checks a 5-field cron expression without scheduling it.
func Validate(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// Start begins cron processing, installs the initial schedule if one is
// configured, and kicks off the startup run in the background.
func (s *Scheduler) Start(expr string) {
	s.cron.Start()
	if expr != "" {
		if err := s.Reschedule(expr); err != nil {
			slog.Warn("Stored schedule is invalid, waiting for setup", "schedule", expr, "error", err)
		}
	}
	go s.trigger()
}

// Reschedule replaces the current schedule with expr. An invalid expression
// returns an error and leaves the previous schedule untouched.
func (s *Scheduler) Reschedule(expr string) error {
	if err := Validate(expr); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasEntry {
		s.cron.Remove(s.entryID)
		s.hasEntry = false
	}
	id, err := s.cron.AddFunc(expr, s.trigger)
	if err != nil {
		return fmt.Errorf("failed to schedule %q: %w", expr, err)
	}
	s.entryID = id
	s.hasEntry = true
	slog.Info("Ingestion scheduled", "schedule", expr)
	return nil
}

// Stop halts cron processing and waits for any running job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) trigger() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()
	if err := s.runner.Run(ctx); err != nil {
		slog.Error("Ingestion run failed", "error", err)
	}
}
