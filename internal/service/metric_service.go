package service

import (
	"context"
	"fmt"
	"time"

	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/repository"
)

// MetricService records per-student workflow progress. Stage stamps are
// write-once: the first entry or exit of a stage sticks, later calls for
// the same stage are no-ops.
type MetricService interface {
	RecordQuestionStageIn(ctx context.Context, userID, panelID string) error
	RecordQuestionSubmitted(ctx context.Context, userID, panelID string) error
	RecordTagStageIn(ctx context.Context, userID, panelID string) error
	RecordTagsSubmitted(ctx context.Context, userID, panelID string, tagCount int) error
	RecordVoteStageIn(ctx context.Context, userID, panelID string) error
	RecordVoteCast(ctx context.Context, userID, panelID string, voteCount int) error

	MetricFor(ctx context.Context, userID, panelID string) (*model.Metric, error)
	MetricsForUser(ctx context.Context, userID string) ([]model.Metric, error)
	MetricsForPanel(ctx context.Context, panelID string) ([]model.Metric, error)
	AllMetrics(ctx context.Context) ([]model.Metric, error)
}

type metricService struct {
	metricRepo repository.MetricRepository
	now        func() time.Time
}

func NewMetricService(metricRepo repository.MetricRepository) MetricService {
	return &metricService{metricRepo: metricRepo, now: time.Now}
}

func (s *metricService) RecordQuestionStageIn(ctx context.Context, userID, panelID string) error {
	return s.stamp(userID, panelID, func(m *model.Metric, now time.Time) bool {
		if m.QuestionStageInAt != nil {
			return false
		}
		m.QuestionStageInAt = &now
		return true
	})
}

func (s *metricService) RecordQuestionSubmitted(ctx context.Context, userID, panelID string) error {
	return s.stamp(userID, panelID, func(m *model.Metric, now time.Time) bool {
		if m.QuestionStageOutAt != nil {
			return false
		}
		m.QuestionStageOutAt = &now
		if m.QuestionStageInAt == nil {
			m.QuestionStageInAt = &now
		}
		return true
	})
}

func (s *metricService) RecordTagStageIn(ctx context.Context, userID, panelID string) error {
	return s.stamp(userID, panelID, func(m *model.Metric, now time.Time) bool {
		if m.TagStageInAt != nil {
			return false
		}
		m.TagStageInAt = &now
		return true
	})
}

func (s *metricService) RecordTagsSubmitted(ctx context.Context, userID, panelID string, tagCount int) error {
	return s.stamp(userID, panelID, func(m *model.Metric, now time.Time) bool {
		if m.TagStageOutAt != nil {
			return false
		}
		m.TagStageOutAt = &now
		if m.TagStageInAt == nil {
			m.TagStageInAt = &now
		}
		m.TagCount = tagCount
		return true
	})
}

func (s *metricService) RecordVoteStageIn(ctx context.Context, userID, panelID string) error {
	return s.stamp(userID, panelID, func(m *model.Metric, now time.Time) bool {
		if m.VoteStageInAt != nil {
			return false
		}
		m.VoteStageInAt = &now
		return true
	})
}

func (s *metricService) RecordVoteCast(ctx context.Context, userID, panelID string, voteCount int) error {
	return s.stamp(userID, panelID, func(m *model.Metric, now time.Time) bool {
		if m.VoteStageOutAt != nil {
			return false
		}
		m.VoteStageOutAt = &now
		if m.VoteStageInAt == nil {
			m.VoteStageInAt = &now
		}
		m.VoteCount = voteCount
		return true
	})
}

func (s *metricService) stamp(userID, panelID string, apply func(*model.Metric, time.Time) bool) error {
	metric, err := s.metricRepo.FindOrCreate(userID, panelID)
	if err != nil {
		return fmt.Errorf("%w: loading metric: %v", ErrUpstream, err)
	}
	if !apply(metric, s.now()) {
		return nil
	}
	if err := s.metricRepo.Save(metric); err != nil {
		return fmt.Errorf("%w: saving metric: %v", ErrUpstream, err)
	}
	return nil
}

func (s *metricService) MetricFor(ctx context.Context, userID, panelID string) (*model.Metric, error) {
	metric, err := s.metricRepo.FindOrCreate(userID, panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading metric: %v", ErrUpstream, err)
	}
	return metric, nil
}

func (s *metricService) MetricsForUser(ctx context.Context, userID string) ([]model.Metric, error) {
	metrics, err := s.metricRepo.FindByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading user metrics: %v", ErrUpstream, err)
	}
	return metrics, nil
}

func (s *metricService) MetricsForPanel(ctx context.Context, panelID string) ([]model.Metric, error) {
	metrics, err := s.metricRepo.FindByPanel(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading panel metrics: %v", ErrUpstream, err)
	}
	return metrics, nil
}

func (s *metricService) AllMetrics(ctx context.Context) ([]model.Metric, error) {
	metrics, err := s.metricRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("%w: loading metrics: %v", ErrUpstream, err)
	}
	return metrics, nil
}
