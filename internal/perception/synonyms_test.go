package perception

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherrypick/internal/taxonomy"
)

func TestSynonymMatcher_NoKeyDegradesToExactMatch(t *testing.T) {
	m, err := NewSynonymMatcher(context.Background(), "", taxonomy.New())
	require.NoError(t, err)

	hints := m.Hints(context.Background(), "Portable Charger", 3)
	require.Len(t, hints, 1)
	assert.Equal(t, "power_bank", hints[0].Canonical)
	assert.Equal(t, 1.0, hints[0].Similarity)

	assert.Empty(t, m.Hints(context.Background(), "flux capacitor", 3))
}

func TestCosineSimilarityBasics(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity(nil, []float32{1}), "mismatched lengths score zero")
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{0, 0}))
}
