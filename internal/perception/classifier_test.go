package perception

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherrypick/internal/taxonomy"
	"cherrypick/internal/types"
)

// Mock LLM client for classifier tests
type mockClient struct {
	generateFunc func(ctx context.Context, prompt string) (string, types.ModelInfo, error)
	calls        int
}

func (m *mockClient) GenerateJSON(ctx context.Context, prompt string) (string, types.ModelInfo, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}
	return "", types.ModelInfo{Name: "mock"}, nil
}

func previewReq(label string) types.PreviewRequest {
	return types.PreviewRequest{
		Label: label,
		Itinerary: types.Itinerary{
			Origin:      "ICN",
			Destination: "LAX",
		},
		Segments: []types.Segment{{Operating: "KE", CabinClass: "economy"}},
	}
}

func TestClassify_HappyPath(t *testing.T) {
	tax := taxonomy.New()
	client := &mockClient{
		generateFunc: func(ctx context.Context, prompt string) (string, types.ModelInfo, error) {
			// The prompt must carry the vocabulary and the item context
			assert.Contains(t, prompt, "`power_bank`")
			assert.Contains(t, prompt, "power bank 185wh")
			return goodDraft, types.ModelInfo{Name: "mock-model", Temperature: 0}, nil
		},
	}
	c := NewClassifier(client, tax, nil, ClassifierConfig{})

	draft, err := c.Classify(context.Background(), previewReq("Power Bank 185Wh x2"))
	require.NoError(t, err)
	assert.Equal(t, "power_bank", draft.Canonical)
	assert.Equal(t, "mock-model", draft.ModelInfo.Name)
}

func TestClassify_CacheHitSkipsModel(t *testing.T) {
	tax := taxonomy.New()
	client := &mockClient{
		generateFunc: func(ctx context.Context, prompt string) (string, types.ModelInfo, error) {
			return goodDraft, types.ModelInfo{Name: "mock"}, nil
		},
	}
	c := NewClassifier(client, tax, nil, ClassifierConfig{DraftTTL: time.Minute})

	req := previewReq("power bank 185Wh x2")
	first, err := c.Classify(context.Background(), req)
	require.NoError(t, err)
	second, err := c.Classify(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls, "second call must be served from cache")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.CacheLen())
}

func TestClassify_FingerprintCoversItinerary(t *testing.T) {
	a := previewReq("power bank")
	b := previewReq("power bank")
	b.Itinerary.Via = []string{"PVG"}

	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))

	// Whitespace and case do not change the fingerprint
	c := previewReq("  POWER   bank ")
	assert.Equal(t, Fingerprint(a), Fingerprint(c))
}

func TestClassify_ModelErrorIsNotCached(t *testing.T) {
	tax := taxonomy.New()
	client := &mockClient{
		generateFunc: func(ctx context.Context, prompt string) (string, types.ModelInfo, error) {
			return "", types.ModelInfo{}, ErrLLMUnavailable
		},
	}
	c := NewClassifier(client, tax, nil, ClassifierConfig{})

	_, err := c.Classify(context.Background(), previewReq("power bank"))
	require.ErrorIs(t, err, ErrLLMUnavailable)
	assert.Equal(t, 0, c.CacheLen())

	// Next call tries again (no negative caching, one attempt per request)
	_, _ = c.Classify(context.Background(), previewReq("power bank"))
	assert.Equal(t, 2, client.calls)
}

func TestClassify_GarbageDraftIsValidationError(t *testing.T) {
	tax := taxonomy.New()
	client := &mockClient{
		generateFunc: func(ctx context.Context, prompt string) (string, types.ModelInfo, error) {
			return `{"canonical": "plasma_rifle"}`, types.ModelInfo{}, nil
		},
	}
	c := NewClassifier(client, tax, nil, ClassifierConfig{})

	_, err := c.Classify(context.Background(), previewReq("ray gun"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "canonical", verr.Field)
	assert.Equal(t, 0, c.CacheLen(), "rejected drafts are never cached")
}

func TestClassify_EmptyLabel(t *testing.T) {
	c := NewClassifier(&mockClient{}, taxonomy.New(), nil, ClassifierConfig{})
	_, err := c.Classify(context.Background(), types.PreviewRequest{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "label", verr.Field)
}

func TestSynonymMatcher_DisabledModeExactMatch(t *testing.T) {
	tax := taxonomy.New()
	m, err := NewSynonymMatcher(context.Background(), "", tax)
	require.NoError(t, err)

	hints := m.Hints(context.Background(), "Portable Charger", 3)
	require.Len(t, hints, 1)
	assert.Equal(t, "power_bank", hints[0].Canonical)
	assert.Equal(t, 1.0, hints[0].Similarity)

	assert.Empty(t, m.Hints(context.Background(), "quantum flux coil", 3))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 5}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
