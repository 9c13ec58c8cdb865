package jobs

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper evicts idle session workspaces.
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}

// SessionSweeper drops the prediction history of sessions that have been
// idle for longer than maxIdle.
type SessionSweeper struct {
	sessions Sweeper
	interval time.Duration
	maxIdle  time.Duration
}

// NewSessionSweeper creates a new session sweeper.
func NewSessionSweeper(sessions Sweeper, interval, maxIdle time.Duration) *SessionSweeper {
	return &SessionSweeper{sessions: sessions, interval: interval, maxIdle: maxIdle}
}

// Start begins the sweep loop. It returns when ctx is done.
func (s *SessionSweeper) Start(ctx context.Context) {
	slog.Info("session sweeper started", "interval", s.interval, "max_idle", s.maxIdle)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *SessionSweeper) sweep() {
	if n := s.sessions.Sweep(s.maxIdle); n > 0 {
		slog.Info("evicted idle sessions", "count", n)
	}
}
