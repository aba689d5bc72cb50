package model

import "time"

// Reaction kinds a student can attach to an assigned question.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
	ReactionFlag    = "flag"
	ReactionNeutral = "neutral"
)

// Reaction is one (question, user, kind) interaction. The composite unique
// index enforces the at-most-once invariant per set, and inserting with
// ON CONFLICT DO NOTHING makes the append atomic under concurrent tagging.
type Reaction struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID string    `json:"question_id" gorm:"size:36;not null;uniqueIndex:idx_reaction_once,priority:1"`
	UserID     string    `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_reaction_once,priority:2"`
	Kind       string    `json:"kind" gorm:"size:16;not null;uniqueIndex:idx_reaction_once,priority:3"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReactionCounts aggregates per-question reaction totals.
type ReactionCounts struct {
	Likes    int
	Dislikes int
	Flags    int
}
