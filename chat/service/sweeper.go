package service

import (
	"context"
	"log"
	"time"
)

// DefaultSweepInterval is finer than the user-visible countdown
// granularity so rooms disappear within a second of their deadline.
const DefaultSweepInterval = time.Second

// Sweeper periodically evicts expired rooms. It owns no state beyond the
// ticker; each tick delegates to ChatService.SweepExpired, which tests
// can also call directly to step expiry deterministically.
type Sweeper struct {
	svc      ChatService
	interval time.Duration
}

// NewSweeper creates a sweeper with the given period. A non-positive
// interval falls back to DefaultSweepInterval.
func NewSweeper(svc ChatService, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{svc: svc, interval: interval}
}

// Run ticks until the context is cancelled. Start it with `go` at process
// startup; cancelling the context stops the sweep at shutdown.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.svc.SweepExpired(); n > 0 {
				log.Printf("Swept %d expired rooms", n)
			}
		}
	}
}
