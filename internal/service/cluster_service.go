package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/panelmgmt/pms-core/internal/storage"
	"github.com/rs/zerolog/log"
)

// VotingClusterCap is how many top clusters are persisted for the voting
// stage.
const VotingClusterCap = 20

// Cluster is one connected component under the "similar" relation, reduced
// to its representative and aggregate engagement.
type Cluster struct {
	RepresentativeID   string   `json:"representative_id"`
	RepresentativeText string   `json:"representative_text"`
	MemberIDs          []string `json:"member_ids"`
	Likes              int      `json:"likes"`
	Dislikes           int      `json:"dislikes"`
	NetScore           int      `json:"net_score"`
}

// ClusterService groups a panel's questions into similarity clusters, ranks
// them by net engagement and snapshots the top clusters for voting.
type ClusterService interface {
	// GroupSimilarQuestions computes the full ranked cluster list and
	// persists the top VotingClusterCap entries as a blob artifact.
	GroupSimilarQuestions(ctx context.Context, panelID string) ([]Cluster, error)
	// TopClusters reads the persisted snapshot.
	TopClusters(ctx context.Context, panelID string) ([]Cluster, error)
}

type clusterService struct {
	questionRepo   repository.QuestionRepository
	reactionRepo   repository.ReactionRepository
	similarityRepo repository.SimilarityRepository
	blob           storage.BlobStore
}

func NewClusterService(
	questionRepo repository.QuestionRepository,
	reactionRepo repository.ReactionRepository,
	similarityRepo repository.SimilarityRepository,
	blob storage.BlobStore,
) ClusterService {
	return &clusterService{
		questionRepo:   questionRepo,
		reactionRepo:   reactionRepo,
		similarityRepo: similarityRepo,
		blob:           blob,
	}
}

func (s *clusterService) GroupSimilarQuestions(ctx context.Context, panelID string) ([]Cluster, error) {
	questions, err := s.questionRepo.FindByPanel(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading questions: %v", ErrUpstream, err)
	}
	edges, err := s.similarityRepo.FindByPanel(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading similarity edges: %v", ErrUpstream, err)
	}
	counts, err := s.reactionRepo.CountsByPanel(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading reaction counts: %v", ErrUpstream, err)
	}

	// Edges are stored normalized, but adjacency is unioned in both
	// directions anyway so connectivity never depends on edge direction.
	adjacency := make(map[string][]string)
	for _, e := range edges {
		adjacency[e.LowID] = append(adjacency[e.LowID], e.HighID)
		adjacency[e.HighID] = append(adjacency[e.HighID], e.LowID)
	}

	clusters := clusterQuestions(questions, adjacency, counts)

	capped := clusters
	if len(capped) > VotingClusterCap {
		capped = capped[:VotingClusterCap]
	}
	if err := s.blob.PutJSON(ctx, clusterArtifactKey(panelID), capped); err != nil {
		return nil, fmt.Errorf("%w: persisting cluster artifact: %v", ErrUpstream, err)
	}

	log.Info().Str("panelID", panelID).Int("clusters", len(clusters)).Msg("Similarity clusters computed and persisted")
	return clusters, nil
}

func (s *clusterService) TopClusters(ctx context.Context, panelID string) ([]Cluster, error) {
	var clusters []Cluster
	err := s.blob.GetJSON(ctx, clusterArtifactKey(panelID), &clusters)
	if err == storage.ErrBlobNotFound {
		return nil, fmt.Errorf("%w: cluster snapshot for panel %s", ErrNotFound, panelID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading cluster artifact: %v", ErrUpstream, err)
	}
	return clusters, nil
}

// clusterQuestions finds connected components with an iterative DFS (an
// explicit stack: similarity graphs are user-shaped, recursion depth must
// not depend on cluster size), picks per-cluster representatives and ranks
// clusters by net score.
//
// Representative: the unflagged member with the most likes, ties broken by
// traversal order. A cluster whose members are all flagged is dropped.
// Aggregates count unflagged members only.
func clusterQuestions(
	questions []model.Question,
	adjacency map[string][]string,
	counts map[string]model.ReactionCounts,
) []Cluster {
	textByID := make(map[string]string, len(questions))
	for _, q := range questions {
		textByID[q.ID] = q.Text
	}

	visited := make(map[string]bool, len(questions))
	var clusters []Cluster

	for _, q := range questions {
		if visited[q.ID] {
			continue
		}

		var members []string
		stack := []string{q.ID}
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[node] {
				continue
			}
			visited[node] = true
			members = append(members, node)
			for _, neighbor := range adjacency[node] {
				if !visited[neighbor] {
					stack = append(stack, neighbor)
				}
			}
		}

		cluster := Cluster{MemberIDs: members}
		bestLikes := -1
		for _, id := range members {
			c := counts[id]
			if c.Flags > 0 {
				continue
			}
			cluster.Likes += c.Likes
			cluster.Dislikes += c.Dislikes
			if c.Likes > bestLikes {
				bestLikes = c.Likes
				cluster.RepresentativeID = id
				cluster.RepresentativeText = textByID[id]
			}
		}
		if cluster.RepresentativeID == "" {
			// Every member flagged: no representative, cluster contributes
			// nothing to voting.
			continue
		}
		cluster.NetScore = cluster.Likes - cluster.Dislikes
		clusters = append(clusters, cluster)
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].NetScore > clusters[j].NetScore
	})
	return clusters
}
