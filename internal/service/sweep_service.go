package service

import (
	"context"
	"fmt"
	"time"

	"github.com/panelmgmt/pms-core/config"
	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SweepService advances panels whose stage deadline passed recently: it
// triggers the tagging distribution after the question deadline, the cluster
// computation after the tagging deadline and the grade recomputation after
// the voting deadline. Each trigger is latched per panel and day, so
// overlapping instances run every action at most once.
type SweepService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	// SweepOnce runs a single pass over all panels. Exposed for the admin
	// trigger endpoint; the cron schedule calls it on its own.
	SweepOnce(ctx context.Context)
}

type sweepService struct {
	panelRepo    repository.PanelRepository
	distribution DistributionService
	clusters     ClusterService
	scoring      ScoringService
	guard        OnceGuard
	cfg          config.Sweep

	cron *cron.Cron
	now  func() time.Time
}

func NewSweepService(
	panelRepo repository.PanelRepository,
	distribution DistributionService,
	clusters ClusterService,
	scoring ScoringService,
	guard OnceGuard,
	cfg *config.Config,
) SweepService {
	return &sweepService{
		panelRepo:    panelRepo,
		distribution: distribution,
		clusters:     clusters,
		scoring:      scoring,
		guard:        guard,
		cfg:          cfg.Sweep,
		cron:         cron.New(),
		now:          time.Now,
	}
}

func (s *sweepService) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Spec, func() {
		s.SweepOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.cfg.Spec, err)
	}
	s.cron.Start()
	log.Info().Str("spec", s.cfg.Spec).Msg("Deadline sweep scheduled")
	return nil
}

func (s *sweepService) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	return nil
}

func (s *sweepService) SweepOnce(ctx context.Context) {
	panels, err := s.panelRepo.FindAll()
	if err != nil {
		log.Error().Err(err).Msg("Sweep could not load panels")
		return
	}

	now := s.now()
	for _, panel := range panels {
		if s.due(panel.QuestionStageDeadline, now) {
			s.runAction(ctx, "distribute", panel.ID, now, func(actionCtx context.Context) error {
				_, err := s.distribution.DistributeTagQuestions(actionCtx, panel.ID)
				return err
			})
		}
		if s.due(panel.TagStageDeadline, now) {
			s.runAction(ctx, "cluster", panel.ID, now, func(actionCtx context.Context) error {
				_, err := s.clusters.GroupSimilarQuestions(actionCtx, panel.ID)
				return err
			})
		}
		if s.due(panel.VoteStageDeadline, now) {
			s.runAction(ctx, "score", panel.ID, now, func(actionCtx context.Context) error {
				_, err := s.scoring.ScorePanel(actionCtx, panel.ID)
				return err
			})
		}
	}
}

// due reports whether the deadline passed within the sweep window. Deadlines
// older than the window are settled history and never re-triggered.
func (s *sweepService) due(deadline, now time.Time) bool {
	return deadline.Before(now) && now.Sub(deadline) <= s.cfg.Window
}

func (s *sweepService) runAction(ctx context.Context, action, panelID string, now time.Time, fn func(context.Context) error) {
	key := fmt.Sprintf("sweep:%s:%s:%s", action, panelID, now.UTC().Format("2006-01-02"))
	won, err := s.guard.Acquire(ctx, key, s.cfg.Window)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Sweep latch unavailable")
		return
	}
	if !won {
		return
	}

	actionCtx, cancel := context.WithTimeout(ctx, s.cfg.ActionTimeout)
	defer cancel()

	if err := fn(actionCtx); err != nil {
		log.Error().Err(err).Str("action", action).Str("panelID", panelID).Msg("Sweep action failed")
		return
	}
	log.Info().Str("action", action).Str("panelID", panelID).Msg("Sweep action completed")
}
