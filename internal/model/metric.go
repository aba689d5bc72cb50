package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScoreNotComputed is the sentinel stored in score columns before the
// scoring engine has run for that stage.
var ScoreNotComputed = decimal.NewFromInt(-1)

// Metric tracks one student's progress and grade for one panel. The
// composite unique index keeps at most one row per (user, panel) pair.
// Scores are numeric decimals, never floats, so recomputation cannot drift.
type Metric struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  string `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_metric_user_panel,priority:1"`
	PanelID string `json:"panel_id" gorm:"size:36;not null;uniqueIndex:idx_metric_user_panel,priority:2"`

	QuestionStageInAt  *time.Time `json:"question_stage_in_at,omitempty"`
	QuestionStageOutAt *time.Time `json:"question_stage_out_at,omitempty"`
	TagStageInAt       *time.Time `json:"tag_stage_in_at,omitempty"`
	TagStageOutAt      *time.Time `json:"tag_stage_out_at,omitempty"`
	VoteStageInAt      *time.Time `json:"vote_stage_in_at,omitempty"`
	VoteStageOutAt     *time.Time `json:"vote_stage_out_at,omitempty"`

	TagCount  int `json:"tag_count" gorm:"not null;default:0"`
	VoteCount int `json:"vote_count" gorm:"not null;default:0"`

	QuestionScore decimal.Decimal `json:"question_score" gorm:"type:numeric(8,4);default:-1"`
	TagScore      decimal.Decimal `json:"tag_score" gorm:"type:numeric(8,4);default:-1"`
	VoteScore     decimal.Decimal `json:"vote_score" gorm:"type:numeric(8,4);default:-1"`
	BonusScore    decimal.Decimal `json:"bonus_score" gorm:"type:numeric(8,4);default:-1"`
	FinalScore    decimal.Decimal `json:"final_score" gorm:"type:numeric(8,4);default:-1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
