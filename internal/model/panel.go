package model

import (
	"time"

	"gorm.io/gorm"
)

// Panel visibility values.
const (
	VisibilityPublic   = "public"
	VisibilityInternal = "internal"
)

// Panel is a Q&A session with four staged, deadline-bounded phases:
// question submission, tagging, voting, presentation.
type Panel struct {
	ID                    string         `gorm:"primaryKey;size:36" json:"id"`
	Name                  string         `json:"name" gorm:"not null"`
	Description           string         `json:"description,omitempty" gorm:"type:text"`
	PanelistName          string         `json:"panelist_name"`
	PanelistEmail         string         `json:"panelist_email" gorm:"index"`
	Visibility            string         `json:"visibility" gorm:"not null;default:'public'"` // "public", "internal"
	QuestionStageDeadline time.Time      `json:"question_stage_deadline"`
	TagStageDeadline      time.Time      `json:"tag_stage_deadline"`
	VoteStageDeadline     time.Time      `json:"vote_stage_deadline"`
	PresentationDate      time.Time      `json:"presentation_date"`
	QuestionsPerStudent   int            `json:"questions_per_student" gorm:"not null"`
	VideoLink             string         `json:"video_link,omitempty"`
	StartDate             time.Time      `json:"start_date"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}
