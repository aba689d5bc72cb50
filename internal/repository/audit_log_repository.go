package repository

import (
	"github.com/panelmgmt/pms-core/internal/model"
	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Append(entry *model.AuditLog) error
	FindAll() ([]model.AuditLog, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Append(entry *model.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *auditLogRepository) FindAll() ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := r.db.Order("created_at desc").Find(&entries).Error
	return entries, err
}
