package engine

import (
	"context"
	"time"

	"github.com/lixenwraith/navcore/parameter"
)

// Run ticks the scheduler at a fixed cadence until ctx is cancelled
// Deadlines advance by interval for drift correction; when the loop falls more than
// MaxTickLag intervals behind, the deadline is re-anchored instead of bursting ticks.
// On return every task has been stopped.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = parameter.TickInterval
	}
	defer s.StopAll()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	nextDeadline := time.Now().Add(interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		now := time.Now()
		if !now.Before(nextDeadline) {
			s.Tick()
			nextDeadline = nextDeadline.Add(interval)
			if now.Sub(nextDeadline) > interval*parameter.MaxTickLag {
				nextDeadline = now.Add(interval)
			}
			continue
		}

		timer.Reset(nextDeadline.Sub(now))
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
