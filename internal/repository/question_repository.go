package repository

import (
	"github.com/panelmgmt/pms-core/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	// CreateBatch inserts all questions in one transaction, all-or-nothing.
	CreateBatch(questions []model.Question) error
	FindByID(id string) (*model.Question, error)
	FindByIDs(ids []string) ([]model.Question, error)
	FindByPanel(panelID string) ([]model.Question, error)
	CountByPanelAndUser(panelID, userID string) (int64, error)
	FindAll() ([]model.Question, error)
	// AddVoteScores applies vote_score = vote_score + delta for every entry
	// in one transaction. In-place increments keep concurrent vote
	// submissions from clobbering each other.
	AddVoteScores(awards map[string]int) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) CreateBatch(questions []model.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&questions).Error
	})
}

func (r *questionRepository) FindByID(id string) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByIDs(ids []string) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindByPanel(panelID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Where("panel_id = ?", panelID).Order("created_at asc").Find(&questions).Error
	return questions, err
}

func (r *questionRepository) CountByPanelAndUser(panelID, userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Question{}).
		Where("panel_id = ? AND user_id = ?", panelID, userID).
		Count(&count).Error
	return count, err
}

func (r *questionRepository) FindAll() ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Order("created_at desc").Find(&questions).Error
	return questions, err
}

func (r *questionRepository) AddVoteScores(awards map[string]int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for id, delta := range awards {
			res := tx.Model(&model.Question{}).
				Where("id = ?", id).
				Update("vote_score", gorm.Expr("vote_score + ?", delta))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}
