package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/rs/zerolog/log"
)

// QuestionService owns the submission and tagging stages: students submit
// questions before the question deadline, then react to their assigned
// subset before the tagging deadline.
type QuestionService interface {
	SubmitQuestion(ctx context.Context, userID, panelID, text string) (*model.Question, error)
	// SubmitQuestionBatch creates all questions or none of them.
	SubmitQuestionBatch(ctx context.Context, userID, panelID string, texts []string) ([]model.Question, error)
	SubmittedQuestions(ctx context.Context, userID, panelID string) ([]model.Question, error)
	PanelQuestions(ctx context.Context, panelID string) ([]model.Question, error)

	// TaggingAssignment returns the questions a student must react to. The
	// first call per panel triggers the distribution; a student who already
	// submitted reactions is refused.
	TaggingAssignment(ctx context.Context, userID, panelID string) (map[string]string, error)
	SubmitTagging(ctx context.Context, userID, panelID string, liked, disliked, flagged []string) error
	// MarkSimilar records every pairwise link inside each group of ids.
	MarkSimilar(ctx context.Context, userID, panelID string, groups [][]string) error
}

type questionService struct {
	panelRepo      repository.PanelRepository
	questionRepo   repository.QuestionRepository
	reactionRepo   repository.ReactionRepository
	similarityRepo repository.SimilarityRepository
	distribution   DistributionService
	metricSvc      MetricService
	moderation     ModerationService
	now            func() time.Time
}

func NewQuestionService(
	panelRepo repository.PanelRepository,
	questionRepo repository.QuestionRepository,
	reactionRepo repository.ReactionRepository,
	similarityRepo repository.SimilarityRepository,
	distribution DistributionService,
	metricSvc MetricService,
	moderation ModerationService,
) QuestionService {
	return &questionService{
		panelRepo:      panelRepo,
		questionRepo:   questionRepo,
		reactionRepo:   reactionRepo,
		similarityRepo: similarityRepo,
		distribution:   distribution,
		metricSvc:      metricSvc,
		moderation:     moderation,
		now:            time.Now,
	}
}

func (s *questionService) SubmitQuestion(ctx context.Context, userID, panelID, text string) (*model.Question, error) {
	questions, err := s.SubmitQuestionBatch(ctx, userID, panelID, []string{text})
	if err != nil {
		return nil, err
	}
	return &questions[0], nil
}

func (s *questionService) SubmitQuestionBatch(ctx context.Context, userID, panelID string, texts []string) ([]model.Question, error) {
	panel, err := s.panelRepo.FindByID(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: panel %s", ErrNotFound, panelID)
	}
	if s.now().After(panel.QuestionStageDeadline) {
		return nil, fmt.Errorf("%w: question submission closed at %s", ErrDeadlineExceeded, panel.QuestionStageDeadline.Format(time.RFC3339))
	}

	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no questions submitted", ErrValidation)
	}
	trimmed := make([]string, len(texts))
	for i, text := range texts {
		trimmed[i] = strings.TrimSpace(text)
		if trimmed[i] == "" {
			return nil, fmt.Errorf("%w: question text must not be empty", ErrValidation)
		}
	}

	existing, err := s.questionRepo.CountByPanelAndUser(panelID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: counting submissions: %v", ErrUpstream, err)
	}
	if int(existing)+len(trimmed) > panel.QuestionsPerStudent {
		return nil, fmt.Errorf("%w: at most %d questions per student for this panel", ErrValidation, panel.QuestionsPerStudent)
	}

	questions := make([]model.Question, len(trimmed))
	var flags []model.Reaction
	for i, text := range trimmed {
		questions[i] = model.Question{
			ID:      uuid.New().String(),
			UserID:  userID,
			PanelID: panelID,
			Text:    text,
		}
		if score := s.moderation.ToxicityScore(ctx, text); score >= ToxicityRejectThreshold {
			log.Warn().Str("questionID", questions[i].ID).Int("score", score).Msg("Question auto-flagged by moderation")
			flags = append(flags, model.Reaction{
				QuestionID: questions[i].ID,
				UserID:     userID,
				Kind:       model.ReactionFlag,
			})
		}
	}

	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return nil, fmt.Errorf("%w: creating questions: %v", ErrUpstream, err)
	}
	if len(flags) > 0 {
		if err := s.reactionRepo.AddAll(flags); err != nil {
			log.Error().Err(err).Str("panelID", panelID).Msg("Failed to persist moderation flags")
		}
	}

	if err := s.metricSvc.RecordQuestionSubmitted(ctx, userID, panelID); err != nil {
		log.Error().Err(err).Str("panelID", panelID).Str("userID", userID).Msg("Failed to record submission metric")
	}
	return questions, nil
}

func (s *questionService) SubmittedQuestions(ctx context.Context, userID, panelID string) ([]model.Question, error) {
	questions, err := s.questionRepo.FindByPanel(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading questions: %v", ErrUpstream, err)
	}
	own := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if q.UserID == userID {
			own = append(own, q)
		}
	}
	return own, nil
}

func (s *questionService) PanelQuestions(ctx context.Context, panelID string) ([]model.Question, error) {
	questions, err := s.questionRepo.FindByPanel(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading questions: %v", ErrUpstream, err)
	}
	return questions, nil
}

func (s *questionService) TaggingAssignment(ctx context.Context, userID, panelID string) (map[string]string, error) {
	panel, err := s.panelRepo.FindByID(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: panel %s", ErrNotFound, panelID)
	}
	if s.now().After(panel.TagStageDeadline) {
		return nil, fmt.Errorf("%w: tagging closed at %s", ErrDeadlineExceeded, panel.TagStageDeadline.Format(time.RFC3339))
	}

	metric, err := s.metricSvc.MetricFor(ctx, userID, panelID)
	if err != nil {
		return nil, err
	}
	if metric.TagStageOutAt != nil {
		return nil, fmt.Errorf("%w: tagging already submitted for panel %s", ErrForbidden, panelID)
	}

	assignment, err := s.distribution.AssignmentFor(ctx, panelID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.metricSvc.RecordTagStageIn(ctx, userID, panelID); err != nil {
		log.Error().Err(err).Str("panelID", panelID).Str("userID", userID).Msg("Failed to record tag stage entry")
	}
	return assignment, nil
}

func (s *questionService) SubmitTagging(ctx context.Context, userID, panelID string, liked, disliked, flagged []string) error {
	panel, err := s.panelRepo.FindByID(panelID)
	if err != nil {
		return fmt.Errorf("%w: panel %s", ErrNotFound, panelID)
	}
	if s.now().After(panel.TagStageDeadline) {
		return fmt.Errorf("%w: tagging closed at %s", ErrDeadlineExceeded, panel.TagStageDeadline.Format(time.RFC3339))
	}

	assignment, err := s.distribution.AssignmentFor(ctx, panelID, userID)
	if err != nil {
		return err
	}

	reactions := make([]model.Reaction, 0, len(liked)+len(disliked)+len(flagged))
	for kind, ids := range map[string][]string{
		model.ReactionLike:    liked,
		model.ReactionDislike: disliked,
		model.ReactionFlag:    flagged,
	} {
		for _, id := range ids {
			if _, ok := assignment[id]; !ok {
				return fmt.Errorf("%w: question %s is not in your assignment", ErrValidation, id)
			}
			reactions = append(reactions, model.Reaction{QuestionID: id, UserID: userID, Kind: kind})
		}
	}
	if len(reactions) == 0 {
		return fmt.Errorf("%w: no reactions submitted", ErrValidation)
	}

	if err := s.reactionRepo.AddAll(reactions); err != nil {
		return fmt.Errorf("%w: persisting reactions: %v", ErrUpstream, err)
	}
	if err := s.metricSvc.RecordTagsSubmitted(ctx, userID, panelID, len(reactions)); err != nil {
		log.Error().Err(err).Str("panelID", panelID).Str("userID", userID).Msg("Failed to record tagging metric")
	}
	return nil
}

func (s *questionService) MarkSimilar(ctx context.Context, userID, panelID string, groups [][]string) error {
	panel, err := s.panelRepo.FindByID(panelID)
	if err != nil {
		return fmt.Errorf("%w: panel %s", ErrNotFound, panelID)
	}
	if s.now().After(panel.TagStageDeadline) {
		return fmt.Errorf("%w: tagging closed at %s", ErrDeadlineExceeded, panel.TagStageDeadline.Format(time.RFC3339))
	}

	var edges []model.SimilarityEdge
	for _, group := range groups {
		if len(group) < 2 {
			return fmt.Errorf("%w: a similarity group needs at least two question ids", ErrValidation)
		}
		unique := make(map[string]bool, len(group))
		for _, id := range group {
			if unique[id] {
				return fmt.Errorf("%w: duplicate question id %s in similarity group", ErrValidation, id)
			}
			unique[id] = true
		}

		found, err := s.questionRepo.FindByIDs(group)
		if err != nil {
			return fmt.Errorf("%w: loading questions: %v", ErrUpstream, err)
		}
		if len(found) != len(group) {
			return fmt.Errorf("%w: similarity group references unknown question ids", ErrValidation)
		}
		for _, q := range found {
			if q.PanelID != panelID {
				return fmt.Errorf("%w: question %s belongs to another panel", ErrValidation, q.ID)
			}
		}

		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				edges = append(edges, model.NewSimilarityEdge(panelID, group[i], group[j]))
			}
		}
	}
	if len(edges) == 0 {
		return fmt.Errorf("%w: no similarity groups submitted", ErrValidation)
	}

	if err := s.similarityRepo.AddEdges(edges); err != nil {
		return fmt.Errorf("%w: persisting similarity edges: %v", ErrUpstream, err)
	}
	log.Info().Str("panelID", panelID).Str("userID", userID).Int("edges", len(edges)).Msg("Similarity links recorded")
	return nil
}
