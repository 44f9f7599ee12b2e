package narration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherrypick/internal/types"
)

type mockClient struct {
	response string
	err      error
	calls    int
}

func (m *mockClient) GenerateJSON(ctx context.Context, prompt string) (string, types.ModelInfo, error) {
	m.calls++
	return m.response, types.ModelInfo{Name: "mock"}, m.err
}

func perfumeResult(state types.PreviewState) *types.PreviewResult {
	return &types.PreviewResult{
		Label:     "perfume 50ml",
		Canonical: "perfume",
		State:     state,
		Decision: types.Decision{
			CarryOn: types.VerdictSlot{Status: types.StatusLimit, Badges: []string{"100ml", "1L zip bag"}},
			Checked: types.VerdictSlot{Status: types.StatusAllow, Badges: []string{}},
		},
		Engine: &types.EngineResult{
			Sources: []types.SourceRef{{Layer: "international", Code: "INTL"}},
		},
	}
}

func TestNarrate_TemplateWithoutClient(t *testing.T) {
	n := New(nil, Config{})

	out := n.Narrate(context.Background(), perfumeResult(types.StateComplete))
	require.NotNil(t, out)
	assert.Equal(t, "Perfume", out.Title)
	assert.Equal(t, "Allowed with conditions", out.CarryOnCard.StatusLabel)
	assert.Contains(t, out.CarryOnCard.ShortReason, "100ml")
	assert.Equal(t, "Allowed", out.CheckedCard.StatusLabel)
	assert.Equal(t, []string{"Carry-on: 100ml", "Carry-on: 1L zip bag"}, out.Bullets)
	assert.Equal(t, []string{"international/INTL"}, out.Sources)
	assert.Empty(t, out.Footnote)
}

func TestNarrate_ReviewFootnote(t *testing.T) {
	n := New(nil, Config{})
	out := n.Narrate(context.Background(), perfumeResult(types.StateNeedsReview))
	assert.Contains(t, out.Footnote, "Confirm with your airline")
}

func TestNarrate_PolishedOutputAccepted(t *testing.T) {
	client := &mockClient{response: "```json\n" + `{
		"title": "Your perfume",
		"carry_on": {"status_label": "Allowed with conditions", "short_reason": "Keep it under 100ml in the liquids bag."},
		"checked": {"status_label": "Allowed", "short_reason": "Pack it however you like."},
		"bullets": ["Bottles up to 100ml only"],
		"footnote": ""
	}` + "\n```"}
	n := New(client, Config{})

	out := n.Narrate(context.Background(), perfumeResult(types.StateComplete))
	assert.Equal(t, "Your perfume", out.Title)
	assert.Equal(t, "Keep it under 100ml in the liquids bag.", out.CarryOnCard.ShortReason)
	assert.Equal(t, []string{"international/INTL"}, out.Sources, "sources stay deterministic")
}

func TestNarrate_InventedNumberFallsBack(t *testing.T) {
	client := &mockClient{response: `{
		"title": "Your perfume",
		"carry_on": {"status_label": "Allowed with conditions", "short_reason": "Up to 350ml is fine."},
		"checked": {"status_label": "Allowed", "short_reason": "Fine."},
		"bullets": [],
		"footnote": ""
	}`}
	n := New(client, Config{})

	out := n.Narrate(context.Background(), perfumeResult(types.StateComplete))
	assert.Equal(t, "Perfume", out.Title, "template text served instead")
	assert.Contains(t, out.CarryOnCard.ShortReason, "100ml")
}

func TestNarrate_AlteredStatusFallsBack(t *testing.T) {
	client := &mockClient{response: `{
		"title": "Your perfume",
		"carry_on": {"status_label": "Allowed", "short_reason": "No limits at all."},
		"checked": {"status_label": "Allowed", "short_reason": "Fine."},
		"bullets": [],
		"footnote": ""
	}`}
	n := New(client, Config{})

	out := n.Narrate(context.Background(), perfumeResult(types.StateComplete))
	assert.Equal(t, "Allowed with conditions", out.CarryOnCard.StatusLabel)
}

func TestNarrate_ModelFailureFallsBack(t *testing.T) {
	for name, client := range map[string]*mockClient{
		"error":   {err: context.DeadlineExceeded},
		"garbage": {response: "sorry, I cannot help with that"},
		"partial": {response: `{"title": ""}`},
	} {
		t.Run(name, func(t *testing.T) {
			n := New(client, Config{})
			out := n.Narrate(context.Background(), perfumeResult(types.StateComplete))
			require.NotNil(t, out)
			assert.Equal(t, "Perfume", out.Title)
		})
	}
}

func TestForeignNumber(t *testing.T) {
	res := perfumeResult(types.StateComplete)

	_, ok := foreignNumber("stay under 100ml, use a 1L bag", res)
	assert.True(t, ok)

	tok, ok := foreignNumber("up to 250ml is fine", res)
	assert.False(t, ok)
	assert.Equal(t, "250", tok)
}
