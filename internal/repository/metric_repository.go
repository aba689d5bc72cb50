package repository

import (
	"errors"

	"github.com/panelmgmt/pms-core/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MetricRepository interface {
	// FindOrCreate returns the metric for (userID, panelID), creating the
	// row lazily on first stage activity.
	FindOrCreate(userID, panelID string) (*model.Metric, error)
	FindByUserAndPanel(userID, panelID string) (*model.Metric, error)
	FindByPanel(panelID string) ([]model.Metric, error)
	FindByUser(userID string) ([]model.Metric, error)
	FindAll() ([]model.Metric, error)
	// CreateIfAbsent fans out metric rows without touching existing ones.
	CreateIfAbsent(metrics []model.Metric) error
	Save(metric *model.Metric) error
}

type metricRepository struct {
	db *gorm.DB
}

func NewMetricRepository(db *gorm.DB) MetricRepository {
	return &metricRepository{db: db}
}

func (r *metricRepository) FindOrCreate(userID, panelID string) (*model.Metric, error) {
	metric, err := r.FindByUserAndPanel(userID, panelID)
	if err == nil {
		return metric, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := model.Metric{
		UserID:        userID,
		PanelID:       panelID,
		QuestionScore: model.ScoreNotComputed,
		TagScore:      model.ScoreNotComputed,
		VoteScore:     model.ScoreNotComputed,
		BonusScore:    model.ScoreNotComputed,
		FinalScore:    model.ScoreNotComputed,
	}
	// Concurrent first-activity requests may race on the insert; the unique
	// (user, panel) index plus DoNothing keeps exactly one row.
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return r.FindByUserAndPanel(userID, panelID)
}

func (r *metricRepository) FindByUserAndPanel(userID, panelID string) (*model.Metric, error) {
	var metric model.Metric
	err := r.db.Where("user_id = ? AND panel_id = ?", userID, panelID).First(&metric).Error
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

func (r *metricRepository) FindByPanel(panelID string) ([]model.Metric, error) {
	var metrics []model.Metric
	err := r.db.Where("panel_id = ?", panelID).Find(&metrics).Error
	return metrics, err
}

func (r *metricRepository) FindByUser(userID string) ([]model.Metric, error) {
	var metrics []model.Metric
	err := r.db.Where("user_id = ?", userID).Find(&metrics).Error
	return metrics, err
}

func (r *metricRepository) FindAll() ([]model.Metric, error) {
	var metrics []model.Metric
	err := r.db.Find(&metrics).Error
	return metrics, err
}

func (r *metricRepository) CreateIfAbsent(metrics []model.Metric) error {
	if len(metrics) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&metrics).Error
}

func (r *metricRepository) Save(metric *model.Metric) error {
	return r.db.Save(metric).Error
}
