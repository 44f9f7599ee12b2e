package perception

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherrypick/internal/taxonomy"
)

const goodDraft = `{
  "canonical": "power_bank",
  "params": {"volume_ml": null, "wh": 185, "count": 2,
             "weight_kg": null, "abv_percent": null, "blade_length_cm": null},
  "carry_on": {"status": "limit", "badges": ["100Wh"]},
  "checked":  {"status": "deny", "badges": []},
  "needs_review": false,
  "signals": {"matched_terms": ["power", "bank"], "confidence": 0.93, "notes": ""}
}`

func TestValidateDraft_Accepts(t *testing.T) {
	tax := taxonomy.New()

	draft, err := ValidateDraft(goodDraft, "power bank 185Wh x2", tax)
	require.NoError(t, err)
	assert.Equal(t, "power_bank", draft.Canonical)
	require.NotNil(t, draft.Params.WattHours)
	assert.Equal(t, 185.0, *draft.Params.WattHours)
	require.NotNil(t, draft.Params.Count)
	assert.Equal(t, 2, *draft.Params.Count)
	assert.Equal(t, 0.93, draft.Signals.Confidence)
	assert.False(t, draft.NeedsReview)
}

func TestValidateDraft_AcceptsModelInfo(t *testing.T) {
	// The documented response schema includes model_info; a payload carrying
	// it must not trip the unknown-field rejection. The self-report is kept
	// only until the transport client stamps the authoritative identity.
	tax := taxonomy.New()
	raw := `{
	  "canonical": "power_bank",
	  "carry_on": {"status": "limit", "badges": []},
	  "checked":  {"status": "deny", "badges": []},
	  "signals": {"matched_terms": ["power", "bank"], "confidence": 0.9},
	  "model_info": {"name": "gemini-2.5-flash", "temperature": 0}
	}`
	draft, err := ValidateDraft(raw, "power bank 185Wh x2", tax)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", draft.ModelInfo.Name)
	assert.Equal(t, 0.0, draft.ModelInfo.Temperature)
}

func TestValidateDraft_MarkdownWrapper(t *testing.T) {
	tax := taxonomy.New()
	wrapped := "```json\n" + goodDraft + "\n```"
	draft, err := ValidateDraft(wrapped, "power bank 185Wh x2", tax)
	require.NoError(t, err)
	assert.Equal(t, "power_bank", draft.Canonical)
}

func TestValidateDraft_Rejections(t *testing.T) {
	tax := taxonomy.New()
	label := "power bank 185Wh"

	cases := []struct {
		name  string
		raw   string
		field string
	}{
		{"not json", "I think this is a power bank!", "payload"},
		{"unknown field", `{"canonical": "power_bank", "vibe": "chill"}`, "payload"},
		{"unknown canonical", `{"canonical": "plasma_rifle",
			"carry_on": {"status": "deny"}, "checked": {"status": "deny"},
			"signals": {"matched_terms": ["power", "bank"], "confidence": 0.9}}`, "canonical"},
		{"bad status", `{"canonical": "power_bank",
			"carry_on": {"status": "maybe"}, "checked": {"status": "deny"},
			"signals": {"matched_terms": ["power", "bank"], "confidence": 0.9}}`, "carry_on.status"},
		{"missing checked", `{"canonical": "power_bank",
			"carry_on": {"status": "limit"},
			"signals": {"matched_terms": ["power", "bank"], "confidence": 0.9}}`, "checked.status"},
		{"negative param", `{"canonical": "power_bank",
			"params": {"wh": -5},
			"carry_on": {"status": "limit"}, "checked": {"status": "deny"},
			"signals": {"matched_terms": ["power", "bank"], "confidence": 0.9}}`, "params.wh"},
		{"fractional count", `{"canonical": "power_bank",
			"params": {"count": 1.5},
			"carry_on": {"status": "limit"}, "checked": {"status": "deny"},
			"signals": {"matched_terms": ["power", "bank"], "confidence": 0.9}}`, "params.count"},
		{"confidence out of range", `{"canonical": "power_bank",
			"carry_on": {"status": "limit"}, "checked": {"status": "deny"},
			"signals": {"matched_terms": ["power", "bank"], "confidence": 1.7}}`, "signals.confidence"},
		{"missing signals", `{"canonical": "power_bank",
			"carry_on": {"status": "limit"}, "checked": {"status": "deny"}}`, "signals"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateDraft(tt.raw, label, tax)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateDraft_MatchedTermsMustBeVerbatim(t *testing.T) {
	tax := taxonomy.New()

	// Terms not present in the label are dropped; repair tops up from
	// label tokens, so this still passes with repaired terms.
	raw := `{"canonical": "knife",
		"carry_on": {"status": "deny"}, "checked": {"status": "allow"},
		"signals": {"matched_terms": ["machete", "sword"], "confidence": 0.8}}`
	draft, err := ValidateDraft(raw, "chef knife 20cm", tax)
	require.NoError(t, err)
	assert.Len(t, draft.Signals.MatchedTerms, 2)
	for _, term := range draft.Signals.MatchedTerms {
		assert.Contains(t, "chef knife 20cm", term)
	}
}

func TestRepairMatchedTerms_SingleWordSplit(t *testing.T) {
	terms := repairMatchedTerms(nil, "corkscrew")
	require.Len(t, terms, 2)
	assert.Equal(t, "corkscrew", terms[0]+terms[1])
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, extractJSON(`noise {"a": {"b": 1}} trailing`))
	assert.Equal(t, "", extractJSON("no braces here"))
	assert.Equal(t, "", extractJSON("{unclosed"))
}
