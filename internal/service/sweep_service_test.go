package service

import (
	"context"
	"testing"
	"time"

	"github.com/panelmgmt/pms-core/config"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweepFixture(t *testing.T, panel model.Panel) (SweepService, *memoryBlobStore, *memoryOnceGuard) {
	t.Helper()

	users := []model.User{
		{ID: "alice", Role: model.RoleStudent},
		{ID: "bob", Role: model.RoleStudent},
	}
	questions := []model.Question{
		{ID: "qa", PanelID: panel.ID, UserID: "carol", Text: "a"},
		{ID: "qb", PanelID: panel.ID, UserID: "dave", Text: "b"},
		{ID: "qc", PanelID: panel.ID, UserID: "erin", Text: "c"},
	}

	panelRepo := newFakePanelRepo(panel)
	questionRepo := newFakeQuestionRepo(questions...)
	blob := newMemoryBlobStore()
	guard := newMemoryOnceGuard()
	metricRepo := newFakeMetricRepo()

	distribution := NewDistributionService(panelRepo, questionRepo, newFakeUserRepo(users...), blob, guard, fixedRand())
	clusters := NewClusterService(questionRepo, newFakeReactionRepo(questionRepo), newFakeSimilarityRepo(), blob)
	scoring := NewScoringService(panelRepo, questionRepo, metricRepo, &config.Config{
		Scoring: config.Scoring{SubmitScore: 40, TaggingScore: 30, VotingScore: 30, BonusPerTag: 1, BonusMax: 20},
	})

	cfg := &config.Config{Sweep: config.Sweep{
		Spec:          "0 6 * * *",
		Window:        24 * time.Hour,
		ActionTimeout: time.Minute,
	}}
	return NewSweepService(panelRepo, distribution, clusters, scoring, guard, cfg), blob, guard
}

func TestSweepTriggersDistributionAfterQuestionDeadline(t *testing.T) {
	panel := model.Panel{
		ID:                    "panel-1",
		QuestionsPerStudent:   1,
		QuestionStageDeadline: time.Now().Add(-time.Hour),
		TagStageDeadline:      time.Now().Add(time.Hour),
		VoteStageDeadline:     time.Now().Add(2 * time.Hour),
	}
	svc, blob, _ := sweepFixture(t, panel)

	svc.SweepOnce(context.Background())

	exists, err := blob.Exists(context.Background(), questionsArtifactKey("panel-1"))
	require.NoError(t, err)
	assert.True(t, exists, "distribution artifact should exist after the sweep")

	exists, err = blob.Exists(context.Background(), clusterArtifactKey("panel-1"))
	require.NoError(t, err)
	assert.False(t, exists, "tag deadline has not passed, no cluster snapshot yet")
}

func TestSweepTriggersClusteringAfterTagDeadline(t *testing.T) {
	panel := model.Panel{
		ID:                    "panel-1",
		QuestionsPerStudent:   1,
		QuestionStageDeadline: time.Now().Add(-2 * time.Hour),
		TagStageDeadline:      time.Now().Add(-time.Hour),
		VoteStageDeadline:     time.Now().Add(time.Hour),
	}
	svc, blob, _ := sweepFixture(t, panel)

	svc.SweepOnce(context.Background())

	exists, err := blob.Exists(context.Background(), clusterArtifactKey("panel-1"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSweepIgnoresSettledDeadlines(t *testing.T) {
	// Deadlines older than the window are history; nothing runs.
	panel := model.Panel{
		ID:                    "panel-1",
		QuestionsPerStudent:   1,
		QuestionStageDeadline: time.Now().Add(-48 * time.Hour),
		TagStageDeadline:      time.Now().Add(-40 * time.Hour),
		VoteStageDeadline:     time.Now().Add(-30 * time.Hour),
	}
	svc, blob, _ := sweepFixture(t, panel)

	svc.SweepOnce(context.Background())

	exists, err := blob.Exists(context.Background(), questionsArtifactKey("panel-1"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSweepDoesNotDoubleApplySameDay(t *testing.T) {
	panel := model.Panel{
		ID:                    "panel-1",
		QuestionsPerStudent:   1,
		QuestionStageDeadline: time.Now().Add(-time.Hour),
		TagStageDeadline:      time.Now().Add(time.Hour),
		VoteStageDeadline:     time.Now().Add(2 * time.Hour),
	}
	svc, blob, guard := sweepFixture(t, panel)
	ctx := context.Background()

	svc.SweepOnce(ctx)
	first, err := blob.GetRaw(ctx, questionsArtifactKey("panel-1"))
	require.NoError(t, err)

	// Second pass the same day: the daily latch refuses, the artifact is
	// untouched.
	svc.SweepOnce(ctx)
	second, err := blob.GetRaw(ctx, questionsArtifactKey("panel-1"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, guard.held)
}
