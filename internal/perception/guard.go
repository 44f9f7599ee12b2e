package perception

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"cherrypick/internal/taxonomy"
	"cherrypick/internal/types"
)

// ValidationError names the first offending field of a model payload. The
// orchestrator surfaces Field through the validation_error flag.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// draftPayload is the exact wire schema the model must produce. Pointers
// distinguish absent from zero; unknown fields are rejected.
type draftPayload struct {
	Canonical   *string        `json:"canonical"`
	Params      *paramsPayload `json:"params"`
	CarryOn     *slotPayload   `json:"carry_on"`
	Checked     *slotPayload   `json:"checked"`
	NeedsReview *bool          `json:"needs_review"`
	Signals     *signalsJSON   `json:"signals"`
	ModelInfo   *modelInfoJSON `json:"model_info"`
}

type paramsPayload struct {
	VolumeML      *float64 `json:"volume_ml"`
	WattHours     *float64 `json:"wh"`
	Count         *float64 `json:"count"`
	WeightKG      *float64 `json:"weight_kg"`
	ABVPercent    *float64 `json:"abv_percent"`
	BladeLengthCM *float64 `json:"blade_length_cm"`
}

type slotPayload struct {
	Status *string  `json:"status"`
	Badges []string `json:"badges"`
}

type signalsJSON struct {
	MatchedTerms []string `json:"matched_terms"`
	Confidence   *float64 `json:"confidence"`
	Notes        string   `json:"notes"`
}

// modelInfoJSON is the model's self-reported identity. It is accepted but
// not trusted; the transport client stamps the authoritative ModelInfo on
// the draft after validation.
type modelInfoJSON struct {
	Name        string   `json:"name"`
	Temperature *float64 `json:"temperature"`
}

// extractJSON finds the JSON object in a response (handles markdown wrappers).
func extractJSON(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}

	return ""
}

// ValidateDraft parses and bounds a raw model completion against the closed
// taxonomy. label is the original user text; matched terms must be verbatim
// substrings of it (or of its normalized form). On success the returned
// Draft is safe to hand to the resolver.
func ValidateDraft(raw, label string, tax *taxonomy.Engine) (*types.Draft, error) {
	blob := extractJSON(raw)
	if blob == "" {
		return nil, &ValidationError{Field: "payload", Reason: "no JSON object in completion"}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(blob)))
	dec.DisallowUnknownFields()
	var p draftPayload
	if err := dec.Decode(&p); err != nil {
		return nil, &ValidationError{Field: "payload", Reason: err.Error()}
	}

	if p.Canonical == nil || *p.Canonical == "" {
		return nil, &ValidationError{Field: "canonical", Reason: "missing"}
	}
	canonical := *p.Canonical
	if !tax.IsKnown(canonical) {
		return nil, &ValidationError{Field: "canonical", Reason: fmt.Sprintf("%q is not in the taxonomy", canonical)}
	}

	carry, err := validateSlot("carry_on", p.CarryOn)
	if err != nil {
		return nil, err
	}
	checked, err := validateSlot("checked", p.Checked)
	if err != nil {
		return nil, err
	}

	params, err := validateParams(p.Params)
	if err != nil {
		return nil, err
	}

	if p.Signals == nil {
		return nil, &ValidationError{Field: "signals", Reason: "missing"}
	}
	if p.Signals.Confidence == nil {
		return nil, &ValidationError{Field: "signals.confidence", Reason: "missing"}
	}
	confidence := *p.Signals.Confidence
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return nil, &ValidationError{Field: "signals.confidence", Reason: fmt.Sprintf("%v out of range [0,1]", confidence)}
	}

	terms := validMatchedTerms(p.Signals.MatchedTerms, label)
	if len(terms) < 2 {
		// Too few verbatim terms is the one failure worth repairing:
		// top up from label tokens before rejecting.
		terms = repairMatchedTerms(terms, label)
	}
	if len(terms) < 2 || len(terms) > 4 {
		return nil, &ValidationError{Field: "signals.matched_terms", Reason: fmt.Sprintf("need 2-4 verbatim terms, have %d", len(terms))}
	}

	needsReview := false
	if p.NeedsReview != nil {
		needsReview = *p.NeedsReview
	}

	var modelInfo types.ModelInfo
	if p.ModelInfo != nil {
		modelInfo.Name = p.ModelInfo.Name
		if p.ModelInfo.Temperature != nil {
			modelInfo.Temperature = *p.ModelInfo.Temperature
		}
	}

	return &types.Draft{
		Canonical:   canonical,
		Params:      params,
		CarryOn:     carry,
		Checked:     checked,
		NeedsReview: needsReview,
		Signals: types.Signals{
			MatchedTerms: terms,
			Confidence:   confidence,
			Notes:        p.Signals.Notes,
		},
		ModelInfo: modelInfo,
	}, nil
}

func validateSlot(field string, s *slotPayload) (types.DraftSlot, error) {
	if s == nil || s.Status == nil {
		return types.DraftSlot{}, &ValidationError{Field: field + ".status", Reason: "missing"}
	}
	status := types.Status(*s.Status)
	if !types.ValidStatus(status) {
		return types.DraftSlot{}, &ValidationError{Field: field + ".status", Reason: fmt.Sprintf("unknown status %q", *s.Status)}
	}
	badges := s.Badges
	if badges == nil {
		badges = []string{}
	}
	return types.DraftSlot{Status: status, Badges: badges}, nil
}

func validateParams(p *paramsPayload) (types.ItemParams, error) {
	var out types.ItemParams
	if p == nil {
		return out, nil
	}

	check := func(field string, v *float64) (*float64, error) {
		if v == nil {
			return nil, nil
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			return nil, &ValidationError{Field: "params." + field, Reason: fmt.Sprintf("%v is not a finite non-negative number", *v)}
		}
		return v, nil
	}

	var err error
	if out.VolumeML, err = check("volume_ml", p.VolumeML); err != nil {
		return out, err
	}
	if out.WattHours, err = check("wh", p.WattHours); err != nil {
		return out, err
	}
	if out.WeightKG, err = check("weight_kg", p.WeightKG); err != nil {
		return out, err
	}
	if out.ABVPercent, err = check("abv_percent", p.ABVPercent); err != nil {
		return out, err
	}
	if out.BladeLengthCM, err = check("blade_length_cm", p.BladeLengthCM); err != nil {
		return out, err
	}
	if p.Count != nil {
		c := *p.Count
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 || c != math.Trunc(c) {
			return out, &ValidationError{Field: "params.count", Reason: fmt.Sprintf("%v is not a non-negative integer", c)}
		}
		n := int(c)
		out.Count = &n
	}
	return out, nil
}

// validMatchedTerms keeps only terms that appear verbatim in the label
// (case-insensitive; normalized form also accepted).
func validMatchedTerms(terms []string, label string) []string {
	lower := strings.ToLower(label)
	norm := NormalizeLabel(label)

	var out []string
	seen := make(map[string]struct{})
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		lt := strings.ToLower(t)
		if !strings.Contains(lower, lt) && !strings.Contains(norm, lt) {
			continue
		}
		if _, dup := seen[lt]; dup {
			continue
		}
		seen[lt] = struct{}{}
		out = append(out, t)
		if len(out) == 4 {
			break
		}
	}
	return out
}

// repairMatchedTerms tops up the term list from label tokens. When the
// label is a single word, splitting it at the midpoint yields two verbatim
// substrings as a last resort.
func repairMatchedTerms(terms []string, label string) []string {
	have := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		have[strings.ToLower(t)] = struct{}{}
	}

	tokens := strings.Fields(NormalizeLabel(label))
	for _, tok := range tokens {
		if len(terms) >= 2 {
			return terms
		}
		if _, dup := have[tok]; dup {
			continue
		}
		have[tok] = struct{}{}
		terms = append(terms, tok)
	}

	if len(terms) < 2 && len(tokens) == 1 {
		word := []rune(tokens[0])
		if len(word) >= 2 {
			mid := len(word) / 2
			terms = []string{string(word[:mid]), string(word[mid:])}
		}
	}
	return terms
}
