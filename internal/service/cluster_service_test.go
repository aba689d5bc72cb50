package service

import (
	"testing"

	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clusterFixtureQuestions(ids ...string) []model.Question {
	questions := make([]model.Question, len(ids))
	for i, id := range ids {
		questions[i] = model.Question{ID: id, Text: "text-" + id}
	}
	return questions
}

func adjacencyFromPairs(pairs ...[2]string) map[string][]string {
	adj := make(map[string][]string)
	for _, p := range pairs {
		adj[p[0]] = append(adj[p[0]], p[1])
		adj[p[1]] = append(adj[p[1]], p[0])
	}
	return adj
}

func TestClusterQuestionsPartition(t *testing.T) {
	// A-B linked, C and D isolated: three clusters covering every question
	// exactly once.
	questions := clusterFixtureQuestions("A", "B", "C", "D")
	adjacency := adjacencyFromPairs([2]string{"A", "B"})

	clusters := clusterQuestions(questions, adjacency, map[string]model.ReactionCounts{})
	require.Len(t, clusters, 3)

	seen := make(map[string]int)
	for _, c := range clusters {
		for _, id := range c.MemberIDs {
			seen[id]++
		}
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1, "D": 1}, seen)
}

func TestClusterQuestionsTransitiveConnectivity(t *testing.T) {
	// A-B and B-C link A and C transitively even though they were never
	// marked similar directly.
	questions := clusterFixtureQuestions("A", "B", "C")
	adjacency := adjacencyFromPairs([2]string{"A", "B"}, [2]string{"B", "C"})

	clusters := clusterQuestions(questions, adjacency, map[string]model.ReactionCounts{})
	require.Len(t, clusters, 1)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, clusters[0].MemberIDs)
}

func TestClusterQuestionsRepresentativeAndAggregates(t *testing.T) {
	questions := clusterFixtureQuestions("A", "B", "C")
	adjacency := adjacencyFromPairs([2]string{"A", "B"}, [2]string{"B", "C"})
	counts := map[string]model.ReactionCounts{
		"A": {Likes: 2, Dislikes: 1},
		"B": {Likes: 5, Dislikes: 0},
		"C": {Likes: 1, Dislikes: 4},
	}

	clusters := clusterQuestions(questions, adjacency, counts)
	require.Len(t, clusters, 1)

	c := clusters[0]
	assert.Equal(t, "B", c.RepresentativeID)
	assert.Equal(t, "text-B", c.RepresentativeText)
	assert.Equal(t, 8, c.Likes)
	assert.Equal(t, 5, c.Dislikes)
	assert.Equal(t, 3, c.NetScore)
}

func TestClusterQuestionsFlaggedMembersExcluded(t *testing.T) {
	questions := clusterFixtureQuestions("A", "B")
	adjacency := adjacencyFromPairs([2]string{"A", "B"})
	counts := map[string]model.ReactionCounts{
		"A": {Likes: 9, Flags: 1},
		"B": {Likes: 2},
	}

	clusters := clusterQuestions(questions, adjacency, counts)
	require.Len(t, clusters, 1)

	// A has more likes but is flagged: it stays a member yet contributes
	// nothing and cannot represent the cluster.
	c := clusters[0]
	assert.Equal(t, "B", c.RepresentativeID)
	assert.ElementsMatch(t, []string{"A", "B"}, c.MemberIDs)
	assert.Equal(t, 2, c.Likes)
	assert.Equal(t, 2, c.NetScore)
}

func TestClusterQuestionsAllFlaggedClusterDropped(t *testing.T) {
	questions := clusterFixtureQuestions("A", "B", "C")
	adjacency := adjacencyFromPairs([2]string{"A", "B"})
	counts := map[string]model.ReactionCounts{
		"A": {Likes: 3, Flags: 2},
		"B": {Flags: 1},
		"C": {Likes: 1},
	}

	clusters := clusterQuestions(questions, adjacency, counts)
	require.Len(t, clusters, 1)
	assert.Equal(t, "C", clusters[0].RepresentativeID)
}

func TestClusterQuestionsRankedByNetScore(t *testing.T) {
	questions := clusterFixtureQuestions("A", "B", "C")
	counts := map[string]model.ReactionCounts{
		"A": {Likes: 1, Dislikes: 0},
		"B": {Likes: 4, Dislikes: 1},
		"C": {Likes: 2, Dislikes: 1},
	}

	clusters := clusterQuestions(questions, map[string][]string{}, counts)
	require.Len(t, clusters, 3)
	assert.Equal(t, "B", clusters[0].RepresentativeID)
	assert.Equal(t, "A", clusters[1].RepresentativeID)
	assert.Equal(t, "C", clusters[2].RepresentativeID)
}

func TestClusterQuestionsRepresentativeTieBreak(t *testing.T) {
	// Equal likes: the first member in traversal order wins.
	questions := clusterFixtureQuestions("A", "B")
	adjacency := adjacencyFromPairs([2]string{"A", "B"})
	counts := map[string]model.ReactionCounts{
		"A": {Likes: 3},
		"B": {Likes: 3},
	}

	clusters := clusterQuestions(questions, adjacency, counts)
	require.Len(t, clusters, 1)
	assert.Equal(t, "A", clusters[0].RepresentativeID)
}
