// Package scheduler wires up the cron job that periodically reconciles
// company job counts and refreshes the cached stats snapshot. The synchronous
// recount after each ingest remains the primary mechanism; this is the safety
// net for drift.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/jackgladowsky/tierjobs/internal/catalog"
	"github.com/jackgladowsky/tierjobs/internal/stats"
)

// Scheduler wraps robfig/cron and manages the recount loop.
type Scheduler struct {
	cron       *cron.Cron
	maintainer *catalog.Maintainer
	aggregator *stats.Aggregator
	spec       string // cron spec, e.g. "@hourly"
	logger     *slog.Logger
}

func New(maintainer *catalog.Maintainer, aggregator *stats.Aggregator, spec string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:       cron.New(),
		maintainer: maintainer,
		aggregator: aggregator,
		spec:       spec,
		logger:     logger,
	}
}

// Start registers the recount job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRecount(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// runRecount reconciles job counts and rebuilds the stats snapshot so the
// cache never serves counts older than one cycle plus the TTL.
func (s *Scheduler) runRecount(ctx context.Context) {
	s.logger.Info("recount cycle started")

	if err := s.maintainer.RecomputeJobCounts(ctx); err != nil {
		s.logger.Error("recompute job counts", "err", err)
		return
	}

	if s.aggregator != nil {
		if _, err := s.aggregator.RefreshOverall(ctx); err != nil {
			s.logger.Error("refresh stats snapshot", "err", err)
			return
		}
	}

	s.logger.Info("recount cycle complete")
}
