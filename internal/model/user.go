package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold. Role gates every route through the capability map
// in internal/middleware.
const (
	RoleAdmin    = "admin"
	RoleStudent  = "student"
	RolePanelist = "panelist"
)

type User struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Role      string         `json:"role" gorm:"not null;index"` // "admin", "student", "panelist"
	UIN       int            `json:"uin" gorm:"uniqueIndex"`
	Email     string         `json:"email" gorm:"index"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Section   string         `json:"section,omitempty"`
	CanvasID  int            `json:"canvas_id,omitempty"`
	LastLogin *time.Time     `json:"last_login,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
