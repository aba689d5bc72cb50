package service

import (
	"context"
	"fmt"

	"github.com/panelmgmt/pms-core/config"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// baseScoreCeiling caps the pre-bonus grade.
var baseScoreCeiling = decimal.NewFromInt(100)

// ScoringService turns recorded participation into grades. All arithmetic is
// decimal; recomputing a panel replaces every derived score, so the engine is
// idempotent over unchanged inputs.
type ScoringService interface {
	// ScorePanel recomputes the grade of every student with a metric row for
	// the panel.
	ScorePanel(ctx context.Context, panelID string) ([]model.Metric, error)
	// ScoreStudent recomputes one student's grade for one panel.
	ScoreStudent(ctx context.Context, userID, panelID string) (*model.Metric, error)
}

type scoringService struct {
	panelRepo    repository.PanelRepository
	questionRepo repository.QuestionRepository
	metricRepo   repository.MetricRepository
	scoring      config.Scoring
}

func NewScoringService(
	panelRepo repository.PanelRepository,
	questionRepo repository.QuestionRepository,
	metricRepo repository.MetricRepository,
	cfg *config.Config,
) ScoringService {
	return &scoringService{
		panelRepo:    panelRepo,
		questionRepo: questionRepo,
		metricRepo:   metricRepo,
		scoring:      cfg.Scoring,
	}
}

func (s *scoringService) ScorePanel(ctx context.Context, panelID string) ([]model.Metric, error) {
	panel, err := s.panelRepo.FindByID(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: panel %s", ErrNotFound, panelID)
	}
	metrics, err := s.metricRepo.FindByPanel(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading panel metrics: %v", ErrUpstream, err)
	}

	scored := make([]model.Metric, 0, len(metrics))
	for i := range metrics {
		metric := &metrics[i]
		if err := s.scoreOne(panel, metric); err != nil {
			return nil, err
		}
		scored = append(scored, *metric)
	}

	log.Info().Str("panelID", panelID).Int("students", len(scored)).Msg("Panel grades recomputed")
	return scored, nil
}

func (s *scoringService) ScoreStudent(ctx context.Context, userID, panelID string) (*model.Metric, error) {
	panel, err := s.panelRepo.FindByID(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: panel %s", ErrNotFound, panelID)
	}
	metric, err := s.metricRepo.FindOrCreate(userID, panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading metric: %v", ErrUpstream, err)
	}
	if err := s.scoreOne(panel, metric); err != nil {
		return nil, err
	}
	return metric, nil
}

func (s *scoringService) scoreOne(panel *model.Panel, metric *model.Metric) error {
	submitted, err := s.questionRepo.CountByPanelAndUser(panel.ID, metric.UserID)
	if err != nil {
		return fmt.Errorf("%w: counting submissions: %v", ErrUpstream, err)
	}

	metric.QuestionScore = questionScore(submitted, panel.QuestionsPerStudent, s.scoring.SubmitScore)
	metric.TagScore = completionScore(metric.TagStageOutAt != nil, s.scoring.TaggingScore)
	metric.VoteScore = completionScore(metric.VoteStageOutAt != nil, s.scoring.VotingScore)
	metric.BonusScore = bonusScore(metric.TagCount, s.scoring.BonusPerTag, s.scoring.BonusMax)
	metric.FinalScore = finalScore(metric.QuestionScore, metric.TagScore, metric.VoteScore, metric.BonusScore)

	if err := s.metricRepo.Save(metric); err != nil {
		return fmt.Errorf("%w: saving metric: %v", ErrUpstream, err)
	}
	return nil
}

// questionScore credits submissions proportionally up to the panel quota:
// submitting half the quota earns half the points, overshooting earns no
// extra.
func questionScore(submitted int64, quota int, maxPoints int64) decimal.Decimal {
	max := decimal.NewFromInt(maxPoints)
	if quota <= 0 {
		return max
	}
	ratio := decimal.NewFromInt(submitted).Div(decimal.NewFromInt(int64(quota)))
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		ratio = decimal.NewFromInt(1)
	}
	return max.Mul(ratio)
}

// completionScore is all-or-nothing on whether the stage was completed.
func completionScore(done bool, maxPoints int64) decimal.Decimal {
	if !done {
		return decimal.Zero
	}
	return decimal.NewFromInt(maxPoints)
}

// bonusScore awards points per tag applied, capped.
func bonusScore(tagCount int, perTag, maxBonus int64) decimal.Decimal {
	bonus := decimal.NewFromInt(int64(tagCount) * perTag)
	capped := decimal.NewFromInt(maxBonus)
	if bonus.GreaterThan(capped) {
		return capped
	}
	return bonus
}

// finalScore is the stage sum capped at 100, plus the bonus on top. The
// bonus rides above the ceiling.
func finalScore(question, tag, vote, bonus decimal.Decimal) decimal.Decimal {
	base := question.Add(tag).Add(vote)
	if base.GreaterThan(baseScoreCeiling) {
		base = baseScoreCeiling
	}
	return base.Add(bonus)
}
