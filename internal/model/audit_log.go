package model

import "time"

// AuditLog is an append-only record of auth-relevant events.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SourceIP  string    `json:"source_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Result    string    `json:"result" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
