package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/interfaces"
)

// refreshJobTimeout bounds one scheduled refresh pass across all users.
const refreshJobTimeout = 10 * time.Minute

// Scheduler runs the background refresh and analytics jobs on cron specs
// with a seconds field.
type Scheduler struct {
	cron      *cron.Cron
	positions interfaces.PositionStore
	portfolio interfaces.PortfolioService
	analytics interfaces.AnalyticsTrigger
	logger    *common.Logger
}

// NewScheduler registers a job for every non-empty spec in config. The
// analytics job is skipped when no trigger is configured.
func NewScheduler(
	config common.SchedulerConfig,
	positions interfaces.PositionStore,
	portfolio interfaces.PortfolioService,
	analytics interfaces.AnalyticsTrigger,
	logger *common.Logger,
) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		positions: positions,
		portfolio: portfolio,
		analytics: analytics,
		logger:    logger,
	}

	if config.RefreshCron != "" {
		if _, err := s.cron.AddFunc(config.RefreshCron, s.runRefresh); err != nil {
			return nil, fmt.Errorf("invalid refresh_cron %q: %w", config.RefreshCron, err)
		}
	}
	if config.AnalyticsCron != "" && analytics != nil {
		if _, err := s.cron.AddFunc(config.AnalyticsCron, s.runAnalytics); err != nil {
			return nil, fmt.Errorf("invalid analytics_cron %q: %w", config.AnalyticsCron, err)
		}
	}

	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshJobTimeout)
	defer cancel()
	s.RefreshAll(ctx)
}

// RefreshAll refreshes stale positions for every user holding positions.
// A failing user is logged and skipped.
func (s *Scheduler) RefreshAll(ctx context.Context) {
	start := time.Now()

	userIDs, err := s.positions.ListUserIDs(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled refresh: failed to list users")
		return
	}

	var updated, failed int
	for _, userID := range userIDs {
		userCtx := common.WithUserContext(ctx, &common.UserContext{UserID: userID})
		_, summary, err := s.portfolio.RefreshPositions(userCtx, false)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Scheduled refresh: user failed")
			continue
		}
		updated += summary.Updated
		failed += len(summary.Failed)
	}

	s.logger.Info().
		Int("users", len(userIDs)).
		Int("updated", updated).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled refresh: complete")
}

func (s *Scheduler) runAnalytics() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.analytics.Trigger(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled analytics trigger failed")
		return
	}
	s.logger.Info().Msg("Scheduled analytics trigger dispatched")
}
