package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSimilarityEdgeNormalizesPair(t *testing.T) {
	forward := NewSimilarityEdge("panel-1", "aaa", "bbb")
	reversed := NewSimilarityEdge("panel-1", "bbb", "aaa")

	assert.Equal(t, forward, reversed)
	assert.Equal(t, "aaa", forward.LowID)
	assert.Equal(t, "bbb", forward.HighID)
	assert.Equal(t, "panel-1", forward.PanelID)
}
