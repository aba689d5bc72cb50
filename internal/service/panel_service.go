package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/panelmgmt/pms-core/internal/dto"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/rs/zerolog/log"
)

// PanelService manages panel records and their per-student metric fan-out.
type PanelService interface {
	CreatePanel(ctx context.Context, req dto.CreatePanelRequest) (*model.Panel, error)
	// ReplacePanel overwrites the whole panel record. There is no partial
	// merge: the request carries every field.
	ReplacePanel(ctx context.Context, panelID string, req dto.CreatePanelRequest) (*model.Panel, error)
	PanelByID(ctx context.Context, panelID string) (*model.Panel, error)
	// PanelsFor filters by caller role: panelists see their own panels,
	// everyone else authenticated sees all.
	PanelsFor(ctx context.Context, role, email string) ([]model.Panel, error)
	PublicPanels(ctx context.Context) ([]model.Panel, error)
}

type panelService struct {
	panelRepo  repository.PanelRepository
	userRepo   repository.UserRepository
	metricRepo repository.MetricRepository
}

func NewPanelService(
	panelRepo repository.PanelRepository,
	userRepo repository.UserRepository,
	metricRepo repository.MetricRepository,
) PanelService {
	return &panelService{
		panelRepo:  panelRepo,
		userRepo:   userRepo,
		metricRepo: metricRepo,
	}
}

func (s *panelService) CreatePanel(ctx context.Context, req dto.CreatePanelRequest) (*model.Panel, error) {
	panel, err := panelFromRequest(req)
	if err != nil {
		return nil, err
	}
	panel.ID = uuid.New().String()

	if err := s.panelRepo.Create(panel); err != nil {
		return nil, fmt.Errorf("%w: creating panel: %v", ErrUpstream, err)
	}

	// Every enrolled student gets a metric row up front so progress queries
	// never miss students who never showed up.
	if err := s.fanOutMetrics(panel.ID); err != nil {
		log.Error().Err(err).Str("panelID", panel.ID).Msg("Failed to fan out panel metrics")
	}

	log.Info().Str("panelID", panel.ID).Str("name", panel.Name).Msg("Panel created")
	return panel, nil
}

func (s *panelService) ReplacePanel(ctx context.Context, panelID string, req dto.CreatePanelRequest) (*model.Panel, error) {
	existing, err := s.panelRepo.FindByID(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: panel %s", ErrNotFound, panelID)
	}

	panel, err := panelFromRequest(req)
	if err != nil {
		return nil, err
	}
	panel.ID = existing.ID
	panel.CreatedAt = existing.CreatedAt

	if err := s.panelRepo.Replace(panel); err != nil {
		return nil, fmt.Errorf("%w: replacing panel: %v", ErrUpstream, err)
	}
	return panel, nil
}

func (s *panelService) PanelByID(ctx context.Context, panelID string) (*model.Panel, error) {
	panel, err := s.panelRepo.FindByID(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: panel %s", ErrNotFound, panelID)
	}
	return panel, nil
}

func (s *panelService) PanelsFor(ctx context.Context, role, email string) ([]model.Panel, error) {
	panels, err := s.panelRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("%w: loading panels: %v", ErrUpstream, err)
	}
	if role != model.RolePanelist {
		return panels, nil
	}
	own := make([]model.Panel, 0, len(panels))
	for _, p := range panels {
		if p.PanelistEmail == email {
			own = append(own, p)
		}
	}
	return own, nil
}

func (s *panelService) PublicPanels(ctx context.Context) ([]model.Panel, error) {
	panels, err := s.panelRepo.FindPublic()
	if err != nil {
		return nil, fmt.Errorf("%w: loading public panels: %v", ErrUpstream, err)
	}
	return panels, nil
}

func (s *panelService) fanOutMetrics(panelID string) error {
	studentIDs, err := s.userRepo.FindStudentIDs()
	if err != nil {
		return err
	}
	metrics := make([]model.Metric, len(studentIDs))
	for i, id := range studentIDs {
		metrics[i] = model.Metric{
			UserID:        id,
			PanelID:       panelID,
			QuestionScore: model.ScoreNotComputed,
			TagScore:      model.ScoreNotComputed,
			VoteScore:     model.ScoreNotComputed,
			BonusScore:    model.ScoreNotComputed,
			FinalScore:    model.ScoreNotComputed,
		}
	}
	return s.metricRepo.CreateIfAbsent(metrics)
}

// panelFromRequest parses the wire form into a panel and checks deadline
// ordering: questions close before tagging, tagging before voting, voting
// before the presentation.
func panelFromRequest(req dto.CreatePanelRequest) (*model.Panel, error) {
	questionDeadline, err := parsePanelTime("questionStageDeadline", req.QuestionStageDeadline)
	if err != nil {
		return nil, err
	}
	tagDeadline, err := parsePanelTime("tagStageDeadline", req.TagStageDeadline)
	if err != nil {
		return nil, err
	}
	voteDeadline, err := parsePanelTime("voteStageDeadline", req.VoteStageDeadline)
	if err != nil {
		return nil, err
	}
	presentation, err := parsePanelTime("panelPresentationDate", req.PanelPresentationDate)
	if err != nil {
		return nil, err
	}
	startDate, err := parsePanelTime("panelStartDate", req.PanelStartDate)
	if err != nil {
		return nil, err
	}

	if !questionDeadline.Before(tagDeadline) {
		return nil, fmt.Errorf("%w: question deadline must precede tag deadline", ErrValidation)
	}
	if !tagDeadline.Before(voteDeadline) {
		return nil, fmt.Errorf("%w: tag deadline must precede vote deadline", ErrValidation)
	}
	if voteDeadline.After(presentation) {
		return nil, fmt.Errorf("%w: vote deadline must not pass the presentation date", ErrValidation)
	}

	return &model.Panel{
		Name:                  req.PanelName,
		Description:           req.PanelDesc,
		PanelistName:          req.Panelist,
		PanelistEmail:         req.PanelistEmail,
		Visibility:            req.Visibility,
		QuestionStageDeadline: questionDeadline,
		TagStageDeadline:      tagDeadline,
		VoteStageDeadline:     voteDeadline,
		PresentationDate:      presentation,
		QuestionsPerStudent:   req.NumberOfQuestions,
		VideoLink:             req.PanelVideoLink,
		StartDate:             startDate,
	}, nil
}

func parsePanelTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC 3339", ErrValidation, field)
	}
	return t, nil
}
