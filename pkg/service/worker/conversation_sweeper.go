package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
)

// ConversationSweeper periodically removes chat transcripts that have been idle for
// longer than the session lifetime. Their session cookies are gone, so nobody can
// reach them any more.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Sweeps are idempotent, so overlapping instances only repeat work
type ConversationSweeper struct {
	repo     interfaces.Repository
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewConversationSweeper creates a sweeper that runs every interval and removes
// transcripts not updated within ttl
func NewConversationSweeper(repo interfaces.Repository, ttl, interval time.Duration) *ConversationSweeper {
	return &ConversationSweeper{
		repo:     repo,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop
// - Initial sweep and periodic sweeps both run in a background goroutine
// - Does not block server startup
func (w *ConversationSweeper) Start(ctx context.Context) error {
	if w.ttl <= 0 || w.interval <= 0 {
		return goerr.New("sweeper ttl and interval must be positive",
			goerr.V("ttl", w.ttl.String()),
			goerr.V("interval", w.interval.String()),
		)
	}

	logging.Default().Info("Conversation sweeper starting",
		"ttl", w.ttl.String(),
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ConversationSweeper) Stop() {
	logging.Default().Info("Conversation sweeper stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Conversation sweeper stopped")
}

func (w *ConversationSweeper) run(ctx context.Context) {
	defer close(w.doneCh)

	if _, err := w.Sweep(ctx); err != nil {
		logging.Default().Error("Initial conversation sweep failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("Conversation sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Conversation sweeper context cancelled")
			return
		}
	}
}

// Sweep performs a single sweep and returns the number of removed transcripts
func (w *ConversationSweeper) Sweep(ctx context.Context) (int, error) {
	startTime := w.now()
	cutoff := startTime.Add(-w.ttl)

	removed, err := w.repo.Conversation().DeleteIdle(ctx, cutoff)
	if err != nil {
		return removed, goerr.Wrap(err, "failed to delete idle conversations", goerr.V("cutoff", cutoff))
	}

	if removed > 0 {
		logging.Default().Info("Conversation sweep completed",
			"removed", removed,
			"cutoff", cutoff,
			"duration", time.Since(startTime).String())
	}
	return removed, nil
}
