package model

import "time"

// SimilarityEdge is one undirected "these questions are similar" link.
// Edges are normalized at write time (LowID < HighID) and deduplicated by
// the unique pair index, so connectivity never depends on which side of a
// mark-similar call a question was on.
type SimilarityEdge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PanelID   string    `json:"panel_id" gorm:"size:36;not null;index"`
	LowID     string    `json:"low_id" gorm:"size:36;not null;uniqueIndex:idx_similarity_pair,priority:1"`
	HighID    string    `json:"high_id" gorm:"size:36;not null;uniqueIndex:idx_similarity_pair,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSimilarityEdge normalizes an unordered id pair into edge form.
func NewSimilarityEdge(panelID, a, b string) SimilarityEdge {
	if b < a {
		a, b = b, a
	}
	return SimilarityEdge{PanelID: panelID, LowID: a, HighID: b}
}
