package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricStampsAreWriteOnce(t *testing.T) {
	metricRepo := newFakeMetricRepo()
	svc := NewMetricService(metricRepo)
	ctx := context.Background()

	require.NoError(t, svc.RecordTagsSubmitted(ctx, "alice", "panel-1", 4))

	first, err := metricRepo.FindByUserAndPanel("alice", "panel-1")
	require.NoError(t, err)
	require.NotNil(t, first.TagStageOutAt)
	assert.Equal(t, 4, first.TagCount)

	// A later submission attempt neither moves the stamp nor the count.
	require.NoError(t, svc.RecordTagsSubmitted(ctx, "alice", "panel-1", 9))

	second, err := metricRepo.FindByUserAndPanel("alice", "panel-1")
	require.NoError(t, err)
	assert.Equal(t, first.TagStageOutAt, second.TagStageOutAt)
	assert.Equal(t, 4, second.TagCount)
}

func TestMetricStageOutImpliesStageIn(t *testing.T) {
	metricRepo := newFakeMetricRepo()
	svc := NewMetricService(metricRepo)
	ctx := context.Background()

	// Completing a stage without an explicit entry still records one.
	require.NoError(t, svc.RecordVoteCast(ctx, "alice", "panel-1", 3))

	metric, err := metricRepo.FindByUserAndPanel("alice", "panel-1")
	require.NoError(t, err)
	assert.NotNil(t, metric.VoteStageInAt)
	assert.NotNil(t, metric.VoteStageOutAt)
}

func TestMetricForCreatesLazily(t *testing.T) {
	svc := NewMetricService(newFakeMetricRepo())

	metric, err := svc.MetricFor(context.Background(), "alice", "panel-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", metric.UserID)
	assert.Equal(t, "panel-1", metric.PanelID)
	assert.Nil(t, metric.QuestionStageInAt)
	assert.Equal(t, 0, metric.TagCount)
}
