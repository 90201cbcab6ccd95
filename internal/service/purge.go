package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/zknotes/zknotes-go/internal/repository"
)

// DefaultPurgeInterval is how often expired tokens are swept when no
// interval is given.
const DefaultPurgeInterval = 24 * time.Hour

// PurgeScheduler periodically deletes expired session tokens. It runs as a
// single goroutine; cycles are serialized by the loop itself, so a purge
// never overlaps with the previous one. A failed cycle is logged and the
// next one proceeds normally.
type PurgeScheduler struct {
	tokens   *repository.TokenRepository
	lifetime time.Duration
	interval time.Duration
}

// NewPurgeScheduler creates a scheduler sweeping tokens older than
// lifetime every interval (DefaultPurgeInterval if interval <= 0).
func NewPurgeScheduler(tokens *repository.TokenRepository, lifetime, interval time.Duration) *PurgeScheduler {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	return &PurgeScheduler{tokens: tokens, lifetime: lifetime, interval: interval}
}

// Run loops until ctx is cancelled. An in-flight cycle abandoned at
// shutdown is harmless: purging is idempotent and retried on the next
// start.
func (s *PurgeScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("token purge scheduler started",
		"interval", s.interval, "token_lifetime", s.lifetime)

	for {
		select {
		case <-ctx.Done():
			slog.Info("token purge scheduler stopped")
			return
		case <-ticker.C:
			s.purge(ctx)
		}
	}
}

func (s *PurgeScheduler) purge(ctx context.Context) {
	n, err := s.tokens.PurgeExpired(ctx, s.lifetime)
	if err != nil {
		slog.Error("token purge failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("purged expired session tokens", "count", n)
	}
}
