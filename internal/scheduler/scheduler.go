// Package scheduler triggers rotation runs on a cron schedule and on demand.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/merzah/merzah/internal/clock"
	"github.com/merzah/merzah/internal/rotation"
)

// Rotator runs one rotation pass at now.
type Rotator interface {
	Run(ctx context.Context, now time.Time) (*rotation.Report, error)
}

// Dispatcher hands a finished report to downstream consumers.
type Dispatcher interface {
	Dispatch(ctx context.Context, report *rotation.Report) error
}

type Scheduler struct {
	rotator      Rotator
	dispatcher   Dispatcher
	clock        clock.Clock
	cron         *cron.Cron
	startupDelay time.Duration
	notifyCh     chan struct{}
}

// New parses spec (six fields, seconds first, or a descriptor such as
// @hourly) and wires the cron job to Notify. dispatcher may be nil.
func New(rotator Rotator, dispatcher Dispatcher, clk clock.Clock, spec string) (*Scheduler, error) {
	if clk == nil {
		clk = clock.System{}
	}
	s := &Scheduler{
		rotator:      rotator,
		dispatcher:   dispatcher,
		clock:        clk,
		cron:         cron.New(cron.WithSeconds()),
		startupDelay: 2 * time.Second,
		notifyCh:     make(chan struct{}, 1),
	}
	if _, err := s.cron.AddFunc(spec, s.Notify); err != nil {
		return nil, fmt.Errorf("invalid rotation schedule %q: %w", spec, err)
	}
	return s, nil
}

// Notify triggers an immediate run. Non-blocking if a run is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

// Start runs until ctx is cancelled. Runs started by the schedule or by
// Notify are serialized through one goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	log.Printf("Scheduler started, next rotation at %s", s.Next().Format(time.RFC3339))
	defer func() {
		<-s.cron.Stop().Done()
		log.Println("Scheduler stopped")
	}()

	// Wait a bit for migrations to complete before the first run
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.startupDelay):
	}

	// Catch up on anything missed while the service was down
	s.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notifyCh:
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	if _, err := s.RunAt(ctx, s.clock.Now()); err != nil {
		log.Printf("Rotation run failed: %v", err)
	}
}

// RunAt performs one rotation pass at now and dispatches the report when
// the pass changed or failed anything. It is safe to call alongside the
// scheduled runs.
func (s *Scheduler) RunAt(ctx context.Context, now time.Time) (*rotation.Report, error) {
	report, err := s.rotator.Run(ctx, now)
	if err != nil {
		return report, err
	}
	if s.dispatcher == nil || report.Quiet() {
		return report, nil
	}
	if err := s.dispatcher.Dispatch(ctx, report); err != nil {
		log.Printf("Failed to dispatch rotation report: %v", err)
	}
	return report, nil
}

// Next returns the next scheduled run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
