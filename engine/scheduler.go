package engine

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/robfig/cron"
)

// Scheduler re-runs a job on a cron schedule. A tick that arrives while the
// previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	running atomic.Bool
	skipped atomic.Int64
}

// NewScheduler registers job under spec, e.g. "@every 15m" or "0 */5 * * * *".
func NewScheduler(ctx context.Context, spec string, job func(ctx context.Context) error) (*Scheduler, error) {
	if _, err := cron.Parse(spec); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	s := &Scheduler{cron: cron.New()}
	err := s.cron.AddFunc(spec, func() { s.tick(ctx, job) })
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick(ctx context.Context, job func(ctx context.Context) error) {
	if ctx.Err() != nil {
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		n := s.skipped.Add(1)
		log.Printf("Previous surface run still in progress, skipping (%d skipped so far)", n)
		return
	}
	defer s.running.Store(false)

	if err := job(ctx); err != nil {
		log.Printf("Scheduled surface run failed: %v", err)
	}
}

// Skipped is the number of ticks dropped because a run was in flight.
func (s *Scheduler) Skipped() int64 { return s.skipped.Load() }

// Run starts the schedule and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	log.Printf("Surface scheduler started")
	<-ctx.Done()
	s.cron.Stop()
	log.Printf("Shutting down surface scheduler")
}
