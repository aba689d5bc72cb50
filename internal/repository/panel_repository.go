package repository

import (
	"github.com/panelmgmt/pms-core/internal/model"
	"gorm.io/gorm"
)

type PanelRepository interface {
	Create(panel *model.Panel) error
	FindByID(id string) (*model.Panel, error)
	FindAll() ([]model.Panel, error)
	FindPublic() ([]model.Panel, error)
	// Replace overwrites the full record. PATCH has replace semantics here,
	// there is no partial merge.
	Replace(panel *model.Panel) error
}

type panelRepository struct {
	db *gorm.DB
}

func NewPanelRepository(db *gorm.DB) PanelRepository {
	return &panelRepository{db: db}
}

func (r *panelRepository) Create(panel *model.Panel) error {
	return r.db.Create(panel).Error
}

func (r *panelRepository) FindByID(id string) (*model.Panel, error) {
	var panel model.Panel
	if err := r.db.First(&panel, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &panel, nil
}

func (r *panelRepository) FindAll() ([]model.Panel, error) {
	var panels []model.Panel
	err := r.db.Order("start_date desc").Find(&panels).Error
	return panels, err
}

func (r *panelRepository) FindPublic() ([]model.Panel, error) {
	var panels []model.Panel
	err := r.db.Where("visibility = ?", model.VisibilityPublic).Order("start_date desc").Find(&panels).Error
	return panels, err
}

func (r *panelRepository) Replace(panel *model.Panel) error {
	return r.db.Save(panel).Error
}
