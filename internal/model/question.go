package model

import (
	"time"
)

// Question is a student-submitted panel question. Interaction state lives in
// separate Reaction and SimilarityEdge rows so concurrent taggers never
// overwrite each other; VoteScore is only ever mutated with an atomic
// in-place increment.
type Question struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	PanelID   string    `json:"panel_id" gorm:"not null;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	VoteScore int       `json:"vote_score" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
