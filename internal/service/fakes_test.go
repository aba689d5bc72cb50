package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/storage"
	"gorm.io/gorm"
)

// In-memory stand-ins for the persistence interfaces. They honor the same
// contracts the gorm-backed implementations do (not-found sentinels, conflict
// deduplication, atomic increments) so engine tests exercise real semantics.

type fakePanelRepo struct {
	panels map[string]model.Panel
}

func newFakePanelRepo(panels ...model.Panel) *fakePanelRepo {
	m := make(map[string]model.Panel, len(panels))
	for _, p := range panels {
		m[p.ID] = p
	}
	return &fakePanelRepo{panels: m}
}

func (r *fakePanelRepo) Create(panel *model.Panel) error {
	r.panels[panel.ID] = *panel
	return nil
}

func (r *fakePanelRepo) FindByID(id string) (*model.Panel, error) {
	p, ok := r.panels[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *fakePanelRepo) FindAll() ([]model.Panel, error) {
	out := make([]model.Panel, 0, len(r.panels))
	for _, p := range r.panels {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePanelRepo) FindPublic() ([]model.Panel, error) {
	var out []model.Panel
	for _, p := range r.panels {
		if p.Visibility == model.VisibilityPublic {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePanelRepo) Replace(panel *model.Panel) error {
	r.panels[panel.ID] = *panel
	return nil
}

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions map[string]*model.Question
	order     []string
}

func newFakeQuestionRepo(questions ...model.Question) *fakeQuestionRepo {
	r := &fakeQuestionRepo{questions: make(map[string]*model.Question)}
	for i := range questions {
		q := questions[i]
		r.questions[q.ID] = &q
		r.order = append(r.order, q.ID)
	}
	return r
}

func (r *fakeQuestionRepo) Create(question *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := *question
	r.questions[q.ID] = &q
	r.order = append(r.order, q.ID)
	return nil
}

func (r *fakeQuestionRepo) CreateBatch(questions []model.Question) error {
	for i := range questions {
		if err := r.Create(&questions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeQuestionRepo) FindByID(id string) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *fakeQuestionRepo) FindByIDs(ids []string) ([]model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Question
	for _, id := range ids {
		if q, ok := r.questions[id]; ok {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) FindByPanel(panelID string) ([]model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Question
	for _, id := range r.order {
		if r.questions[id].PanelID == panelID {
			out = append(out, *r.questions[id])
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) CountByPanelAndUser(panelID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, q := range r.questions {
		if q.PanelID == panelID && q.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeQuestionRepo) FindAll() ([]model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Question
	for _, id := range r.order {
		out = append(out, *r.questions[id])
	}
	return out, nil
}

func (r *fakeQuestionRepo) AddVoteScores(awards map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range awards {
		if _, ok := r.questions[id]; !ok {
			return gorm.ErrRecordNotFound
		}
	}
	for id, delta := range awards {
		r.questions[id].VoteScore += delta
	}
	return nil
}

type fakeUserRepo struct {
	users map[string]*model.User
	order []string
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*model.User)}
	for i := range users {
		u := users[i]
		r.users[u.ID] = &u
		r.order = append(r.order, u.ID)
	}
	return r
}

func (r *fakeUserRepo) Create(user *model.User) error {
	u := *user
	r.users[u.ID] = &u
	r.order = append(r.order, u.ID)
	return nil
}

func (r *fakeUserRepo) FindByID(id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(email string) ([]model.User, error) {
	var out []model.User
	for _, id := range r.order {
		if r.users[id].Email == email {
			out = append(out, *r.users[id])
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByUIN(uin int) (*model.User, error) {
	for _, u := range r.users {
		if u.UIN == uin {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindAll() ([]model.User, error) {
	var out []model.User
	for _, id := range r.order {
		out = append(out, *r.users[id])
	}
	return out, nil
}

func (r *fakeUserRepo) FindStudentIDs() ([]string, error) {
	var out []string
	for _, id := range r.order {
		if r.users[id].Role == model.RoleStudent {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindStudents() ([]model.User, error) {
	var out []model.User
	for _, id := range r.order {
		if r.users[id].Role == model.RoleStudent {
			out = append(out, *r.users[id])
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	u := *user
	r.users[u.ID] = &u
	return nil
}

type fakeMetricRepo struct {
	mu      sync.Mutex
	metrics map[string]*model.Metric
}

func newFakeMetricRepo() *fakeMetricRepo {
	return &fakeMetricRepo{metrics: make(map[string]*model.Metric)}
}

func metricKey(userID, panelID string) string { return userID + "|" + panelID }

func (r *fakeMetricRepo) FindOrCreate(userID, panelID string) (*model.Metric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := metricKey(userID, panelID)
	if m, ok := r.metrics[key]; ok {
		cp := *m
		return &cp, nil
	}
	m := &model.Metric{
		UserID:        userID,
		PanelID:       panelID,
		QuestionScore: model.ScoreNotComputed,
		TagScore:      model.ScoreNotComputed,
		VoteScore:     model.ScoreNotComputed,
		BonusScore:    model.ScoreNotComputed,
		FinalScore:    model.ScoreNotComputed,
	}
	r.metrics[key] = m
	cp := *m
	return &cp, nil
}

func (r *fakeMetricRepo) FindByUserAndPanel(userID, panelID string) (*model.Metric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.metrics[metricKey(userID, panelID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMetricRepo) FindByPanel(panelID string) ([]model.Metric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Metric
	for _, m := range r.metrics {
		if m.PanelID == panelID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMetricRepo) FindByUser(userID string) ([]model.Metric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Metric
	for _, m := range r.metrics {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMetricRepo) FindAll() ([]model.Metric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Metric
	for _, m := range r.metrics {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMetricRepo) CreateIfAbsent(metrics []model.Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range metrics {
		key := metricKey(metrics[i].UserID, metrics[i].PanelID)
		if _, ok := r.metrics[key]; !ok {
			m := metrics[i]
			r.metrics[key] = &m
		}
	}
	return nil
}

func (r *fakeMetricRepo) Save(metric *model.Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := *metric
	r.metrics[metricKey(m.UserID, m.PanelID)] = &m
	return nil
}

type fakeReactionRepo struct {
	mu        sync.Mutex
	questions *fakeQuestionRepo
	reactions map[string]model.Reaction
}

func newFakeReactionRepo(questions *fakeQuestionRepo) *fakeReactionRepo {
	return &fakeReactionRepo{
		questions: questions,
		reactions: make(map[string]model.Reaction),
	}
}

func (r *fakeReactionRepo) AddAll(reactions []model.Reaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, re := range reactions {
		key := re.QuestionID + "|" + re.UserID + "|" + re.Kind
		if _, ok := r.reactions[key]; ok {
			continue
		}
		r.reactions[key] = re
	}
	return nil
}

// CountsByPanel aggregates from the stored reactions the same way the gorm
// implementation joins against the questions table.
func (r *fakeReactionRepo) CountsByPanel(panelID string) (map[string]model.ReactionCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]model.ReactionCounts)
	for _, re := range r.reactions {
		q, err := r.questions.FindByID(re.QuestionID)
		if err != nil || q.PanelID != panelID {
			continue
		}
		c := counts[re.QuestionID]
		switch re.Kind {
		case model.ReactionLike:
			c.Likes++
		case model.ReactionDislike:
			c.Dislikes++
		case model.ReactionFlag:
			c.Flags++
		}
		counts[re.QuestionID] = c
	}
	return counts, nil
}

type fakeSimilarityRepo struct {
	mu    sync.Mutex
	edges map[string]model.SimilarityEdge
	order []string
}

func newFakeSimilarityRepo() *fakeSimilarityRepo {
	return &fakeSimilarityRepo{edges: make(map[string]model.SimilarityEdge)}
}

func (r *fakeSimilarityRepo) AddEdges(edges []model.SimilarityEdge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range edges {
		key := e.LowID + "|" + e.HighID
		if _, ok := r.edges[key]; ok {
			continue
		}
		r.edges[key] = e
		r.order = append(r.order, key)
	}
	return nil
}

func (r *fakeSimilarityRepo) FindByPanel(panelID string) ([]model.SimilarityEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SimilarityEdge
	for _, key := range r.order {
		if r.edges[key].PanelID == panelID {
			out = append(out, r.edges[key])
		}
	}
	return out, nil
}

type memoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *memoryBlobStore) PutJSON(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = body
	return nil
}

func (s *memoryBlobStore) GetJSON(ctx context.Context, key string, dest any) error {
	s.mu.Lock()
	body, ok := s.blobs[key]
	s.mu.Unlock()
	if !ok {
		return storage.ErrBlobNotFound
	}
	return json.Unmarshal(body, dest)
}

// GetRaw exposes the stored bytes for snapshot comparisons in tests.
func (s *memoryBlobStore) GetRaw(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrBlobNotFound
	}
	return body, nil
}

func (s *memoryBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok, nil
}

type memoryOnceGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemoryOnceGuard() *memoryOnceGuard {
	return &memoryOnceGuard{held: make(map[string]bool)}
}

func (g *memoryOnceGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

type noopModeration struct{}

func (noopModeration) ToxicityScore(ctx context.Context, text string) int { return 0 }
