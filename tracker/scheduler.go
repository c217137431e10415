package tracker

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// Cycler runs one full aggregation cycle.
type Cycler interface {
	Cycle(ctx context.Context) error
}

// Scheduler drives the aggregator on a fixed cadence, independent of
// request traffic.
type Scheduler struct {
	cycler   Cycler
	interval time.Duration
	running  atomic.Bool
}

// NewScheduler creates a scheduler that runs the given cycler every interval.
func NewScheduler(c Cycler, interval time.Duration) *Scheduler {
	return &Scheduler{cycler: c, interval: interval}
}

// Run performs one immediate best-effort cycle, then ticks until ctx is
// cancelled. A startup failure leaves the store uninitialized until the next
// tick; it never crashes the process.
func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	s.tick(ctx)
	drain(t)
	for {
		select {
		case <-ctx.Done():
			log.Printf("scheduler stopped")
			return
		case <-t.C:
			s.tick(ctx)
			drain(t)
		}
	}
}

// drain drops a tick that came due while a cycle was running. Without it
// the ticker's buffered tick would fire a second cycle back-to-back
// instead of waiting out the interval.
func drain(t *time.Ticker) {
	select {
	case <-t.C:
	default:
	}
}

// tick runs one cycle unless another is still in flight, in which case the
// tick is a no-op. Two cycles never run concurrently.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		log.Printf("previous cycle still running, skipping tick")
		return
	}
	defer s.running.Store(false)
	if err := s.cycler.Cycle(ctx); err != nil {
		log.Printf("cycle error: %v", err)
	}
}
