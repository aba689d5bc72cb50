package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// FinalListSize is how many questions make the presentation list.
const FinalListSize = 10

// FinalQuestion is one entry of the final ranked list.
type FinalQuestion struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// VotingService accumulates rank ballots onto question vote scores and
// derives the final top list once voting closes.
type VotingService interface {
	// VotingList returns the top cluster representatives a student ranks.
	VotingList(ctx context.Context, panelID string) ([]Cluster, error)
	// SubmitVoteOrder awards 21-position points per ballot entry
	// (most-preferred first) via atomic in-place increments. One ballot per
	// student: a recorded vote-stage-out stamp refuses resubmission.
	SubmitVoteOrder(ctx context.Context, panelID, userID string, order []string) error
	// FinalList ranks the cluster representatives by live vote score and
	// returns the top FinalListSize. Ties keep cluster-rank order.
	FinalList(ctx context.Context, panelID string) ([]FinalQuestion, error)
}

type votingService struct {
	panelRepo    repository.PanelRepository
	questionRepo repository.QuestionRepository
	metricSvc    MetricService
	clusterSvc   ClusterService
	now          func() time.Time
}

func NewVotingService(
	panelRepo repository.PanelRepository,
	questionRepo repository.QuestionRepository,
	metricSvc MetricService,
	clusterSvc ClusterService,
) VotingService {
	return &votingService{
		panelRepo:    panelRepo,
		questionRepo: questionRepo,
		metricSvc:    metricSvc,
		clusterSvc:   clusterSvc,
		now:          time.Now,
	}
}

func (s *votingService) VotingList(ctx context.Context, panelID string) ([]Cluster, error) {
	return s.clusterSvc.TopClusters(ctx, panelID)
}

func (s *votingService) SubmitVoteOrder(ctx context.Context, panelID, userID string, order []string) error {
	panel, err := s.panelRepo.FindByID(panelID)
	if err != nil {
		return fmt.Errorf("%w: panel %s", ErrNotFound, panelID)
	}
	if s.now().After(panel.VoteStageDeadline) {
		return fmt.Errorf("%w: voting closed at %s", ErrDeadlineExceeded, panel.VoteStageDeadline.Format(time.RFC3339))
	}

	// A completed vote stage means the increments already ran; applying a
	// second ballot would double-award its points.
	metric, err := s.metricSvc.MetricFor(ctx, userID, panelID)
	if err != nil {
		return fmt.Errorf("%w: loading vote metric: %v", ErrUpstream, err)
	}
	if metric.VoteStageOutAt != nil {
		return fmt.Errorf("%w: vote already submitted for panel %s", ErrForbidden, panelID)
	}

	if len(order) == 0 {
		return fmt.Errorf("%w: empty vote order", ErrValidation)
	}
	if len(order) > VotingClusterCap {
		return fmt.Errorf("%w: vote order exceeds %d entries", ErrValidation, VotingClusterCap)
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if id == "" {
			return fmt.Errorf("%w: empty question id in vote order", ErrValidation)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate question id %s in vote order", ErrValidation, id)
		}
		seen[id] = true
	}

	// Position 1 earns VotingClusterCap points, position 2 one less, and so
	// on. Applied as one transactional batch of atomic increments.
	awards := make(map[string]int, len(order))
	for i, id := range order {
		awards[id] = VotingClusterCap + 1 - (i + 1)
	}
	if err := s.questionRepo.AddVoteScores(awards); err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: vote order references unknown question", ErrNotFound)
		}
		return fmt.Errorf("%w: applying vote scores: %v", ErrUpstream, err)
	}

	if err := s.metricSvc.RecordVoteCast(ctx, userID, panelID, len(order)); err != nil {
		log.Error().Err(err).Str("panelID", panelID).Str("userID", userID).Msg("Failed to record vote metric")
	}
	return nil
}

func (s *votingService) FinalList(ctx context.Context, panelID string) ([]FinalQuestion, error) {
	clusters, err := s.clusterSvc.TopClusters(ctx, panelID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(clusters))
	for i, c := range clusters {
		ids[i] = c.RepresentativeID
	}
	questions, err := s.questionRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("%w: loading representatives: %v", ErrUpstream, err)
	}
	scoreByID := make(map[string]int, len(questions))
	for _, q := range questions {
		scoreByID[q.ID] = q.VoteScore
	}

	final := make([]FinalQuestion, 0, len(clusters))
	for _, c := range clusters {
		final = append(final, FinalQuestion{
			ID:    c.RepresentativeID,
			Text:  c.RepresentativeText,
			Score: scoreByID[c.RepresentativeID],
		})
	}

	// Stable sort over the artifact order: equal vote scores keep the
	// earlier cluster rank.
	sort.SliceStable(final, func(i, j int) bool {
		return final[i].Score > final[j].Score
	})
	if len(final) > FinalListSize {
		final = final[:FinalListSize]
	}
	return final, nil
}
