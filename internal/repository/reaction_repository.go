package repository

import (
	"github.com/panelmgmt/pms-core/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReactionRepository interface {
	// AddAll inserts the reactions in one transaction. Duplicates (same
	// question, user, kind) are silently skipped via ON CONFLICT DO NOTHING,
	// which keeps the append atomic and the per-set uniqueness invariant in
	// the store rather than in racy read-modify-write code.
	AddAll(reactions []model.Reaction) error
	CountsByPanel(panelID string) (map[string]model.ReactionCounts, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) AddAll(reactions []model.Reaction) error {
	if len(reactions) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&reactions).Error
	})
}

func (r *reactionRepository) CountsByPanel(panelID string) (map[string]model.ReactionCounts, error) {
	var rows []struct {
		QuestionID string
		Kind       string
		Count      int
	}
	err := r.db.Model(&model.Reaction{}).
		Select("reactions.question_id, reactions.kind, COUNT(*) as count").
		Joins("JOIN questions ON questions.id = reactions.question_id").
		Where("questions.panel_id = ?", panelID).
		Group("reactions.question_id, reactions.kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]model.ReactionCounts)
	for _, row := range rows {
		c := counts[row.QuestionID]
		switch row.Kind {
		case model.ReactionLike:
			c.Likes = row.Count
		case model.ReactionDislike:
			c.Dislikes = row.Count
		case model.ReactionFlag:
			c.Flags = row.Count
		}
		counts[row.QuestionID] = c
	}
	return counts, nil
}
