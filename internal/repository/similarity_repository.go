package repository

import (
	"github.com/panelmgmt/pms-core/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SimilarityRepository interface {
	// AddEdges inserts normalized undirected edges, skipping duplicates.
	AddEdges(edges []model.SimilarityEdge) error
	FindByPanel(panelID string) ([]model.SimilarityEdge, error)
}

type similarityRepository struct {
	db *gorm.DB
}

func NewSimilarityRepository(db *gorm.DB) SimilarityRepository {
	return &similarityRepository{db: db}
}

func (r *similarityRepository) AddEdges(edges []model.SimilarityEdge) error {
	if len(edges) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error
	})
}

func (r *similarityRepository) FindByPanel(panelID string) ([]model.SimilarityEdge, error) {
	var edges []model.SimilarityEdge
	err := r.db.Where("panel_id = ?", panelID).Find(&edges).Error
	return edges, err
}
