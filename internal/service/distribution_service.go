package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/panelmgmt/pms-core/internal/storage"
	"github.com/rs/zerolog/log"
)

// MaxTagAssignments caps how many questions one student tags per panel.
const MaxTagAssignments = 20

// distributeLockTTL bounds how long a crashed run can hold the panel latch.
const distributeLockTTL = 10 * time.Minute

// DistributionService assigns every submitted question of a panel to a
// fixed-size subset of students for tagging. The assignment is computed at
// most once per panel and persisted as a blob artifact before anything is
// returned, so repeated fetches by the same student are idempotent.
type DistributionService interface {
	DistributeTagQuestions(ctx context.Context, panelID string) (map[string]map[string]string, error)
	// AssignmentFor returns one student's slice of the artifact, computing
	// the distribution first if no artifact exists yet.
	AssignmentFor(ctx context.Context, panelID, studentID string) (map[string]string, error)
}

type distributionService struct {
	panelRepo    repository.PanelRepository
	questionRepo repository.QuestionRepository
	userRepo     repository.UserRepository
	blob         storage.BlobStore
	guard        OnceGuard

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDistributionService(
	panelRepo repository.PanelRepository,
	questionRepo repository.QuestionRepository,
	userRepo repository.UserRepository,
	blob storage.BlobStore,
	guard OnceGuard,
	rng *rand.Rand,
) DistributionService {
	return &distributionService{
		panelRepo:    panelRepo,
		questionRepo: questionRepo,
		userRepo:     userRepo,
		blob:         blob,
		guard:        guard,
		rng:          rng,
	}
}

func (s *distributionService) DistributeTagQuestions(ctx context.Context, panelID string) (map[string]map[string]string, error) {
	key := questionsArtifactKey(panelID)

	exists, err := s.blob.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: checking assignment artifact: %v", ErrUpstream, err)
	}
	if exists {
		var assignment map[string]map[string]string
		if err := s.blob.GetJSON(ctx, key, &assignment); err != nil {
			return nil, fmt.Errorf("%w: loading assignment artifact: %v", ErrUpstream, err)
		}
		return assignment, nil
	}

	// Validate the panel before taking the latch: a bad panel id must not
	// burn the single-use lock a later valid run needs.
	panel, err := s.panelRepo.FindByID(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: panel %s", ErrNotFound, panelID)
	}

	won, err := s.guard.Acquire(ctx, "distribute:"+panelID, distributeLockTTL)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("%w: distribution for panel %s already in progress", ErrUpstream, panelID)
	}

	questions, err := s.questionRepo.FindByPanel(panelID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading questions: %v", ErrUpstream, err)
	}
	studentIDs, err := s.userRepo.FindStudentIDs()
	if err != nil {
		return nil, fmt.Errorf("%w: loading students: %v", ErrUpstream, err)
	}

	perStudent := len(questions) - panel.QuestionsPerStudent
	if perStudent > MaxTagAssignments {
		perStudent = MaxTagAssignments
	}

	questionIDs := make([]string, len(questions))
	textByID := make(map[string]string, len(questions))
	authorByID := make(map[string]string, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
		textByID[q.ID] = q.Text
		authorByID[q.ID] = q.UserID
	}

	s.mu.Lock()
	assigned, err := buildAssignments(questionIDs, authorByID, studentIDs, perStudent, s.rng)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	assignment := make(map[string]map[string]string, len(assigned))
	for studentID, qids := range assigned {
		sub := make(map[string]string, len(qids))
		for _, qid := range qids {
			sub[qid] = textByID[qid]
		}
		assignment[studentID] = sub
	}

	// Single put after the full computation: a half-written assignment must
	// never be visible to students.
	if err := s.blob.PutJSON(ctx, key, assignment); err != nil {
		return nil, fmt.Errorf("%w: persisting assignment artifact: %v", ErrUpstream, err)
	}

	log.Info().
		Str("panelID", panelID).
		Int("questions", len(questions)).
		Int("students", len(studentIDs)).
		Int("perStudent", perStudent).
		Msg("Tagging distribution computed and persisted")

	return assignment, nil
}

func (s *distributionService) AssignmentFor(ctx context.Context, panelID, studentID string) (map[string]string, error) {
	assignment, err := s.DistributeTagQuestions(ctx, panelID)
	if err != nil {
		return nil, err
	}
	sub, ok := assignment[studentID]
	if !ok {
		return nil, fmt.Errorf("%w: no tagging assignment for user %s", ErrNotFound, studentID)
	}
	return sub, nil
}

// buildAssignments distributes question ids into per-student lists such that
// every student gets exactly perStudent distinct ids, none their own, and
// each question lands in either floor(slots/questions) or that +1 lists.
//
// The pool is a shuffled multiset: every id repeated slots/questions times,
// the first slots%questions ids (original order) once more. Picks that
// violate a constraint are requeued at the back, but each pick scans at most
// the current pool once; an unusable pool fails with ErrInsufficientPool
// instead of spinning forever.
func buildAssignments(
	questionIDs []string,
	authorByID map[string]string,
	studentIDs []string,
	perStudent int,
	rng *rand.Rand,
) (map[string][]string, error) {
	if len(questionIDs) == 0 {
		return nil, fmt.Errorf("%w: no questions to distribute", ErrValidation)
	}
	if len(studentIDs) == 0 {
		return nil, fmt.Errorf("%w: no students to distribute to", ErrValidation)
	}
	if perStudent <= 0 {
		return nil, fmt.Errorf("%w: non-positive per-student quota %d", ErrValidation, perStudent)
	}

	totalSlots := perStudent * len(studentIDs)
	baseRepeats := totalSlots / len(questionIDs)
	extraSlots := totalSlots % len(questionIDs)

	pool := make([]string, 0, totalSlots)
	for _, id := range questionIDs {
		for i := 0; i < baseRepeats; i++ {
			pool = append(pool, id)
		}
	}
	pool = append(pool, questionIDs[:extraSlots]...)

	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	result := make(map[string][]string, len(studentIDs))
	for _, studentID := range studentIDs {
		picked := make([]string, 0, perStudent)
		seen := make(map[string]bool, perStudent)

		for len(picked) < perStudent {
			found := false
			for attempts := len(pool); attempts > 0; attempts-- {
				id := pool[0]
				pool = pool[1:]
				if seen[id] || authorByID[id] == studentID {
					pool = append(pool, id)
					continue
				}
				picked = append(picked, id)
				seen[id] = true
				found = true
				break
			}
			if !found {
				return nil, fmt.Errorf("%w: pool exhausted for student %s", ErrInsufficientPool, studentID)
			}
		}
		result[studentID] = picked
	}
	return result, nil
}
