// Package narration renders traveler-facing explanation text for a resolved
// preview. An optional language model polishes the wording; its output is
// validated against the decision and any failure falls back to deterministic
// templates. Narration reads the decision, it never changes it.
package narration

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cherrypick/internal/logging"
	"cherrypick/internal/perception"
	"cherrypick/internal/types"
)

// Config tunes the narrator.
type Config struct {
	Timeout time.Duration
}

// Narrator produces explanation text. client may be nil, in which case only
// the template renderer runs.
type Narrator struct {
	client  perception.LLMClient
	timeout time.Duration
}

func New(client perception.LLMClient, cfg Config) *Narrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Narrator{client: client, timeout: cfg.Timeout}
}

// wireNarration is the strict JSON shape the model must produce.
type wireNarration struct {
	Title    string   `json:"title"`
	CarryOn  wireCard `json:"carry_on"`
	Checked  wireCard `json:"checked"`
	Bullets  []string `json:"bullets"`
	Footnote string   `json:"footnote"`
}

type wireCard struct {
	StatusLabel string `json:"status_label"`
	ShortReason string `json:"short_reason"`
}

// Narrate renders the narration for a finished result. It never fails: any
// model problem degrades to the template text.
func (n *Narrator) Narrate(ctx context.Context, res *types.PreviewResult) *types.Narration {
	fallback := templateNarration(res)
	if n.client == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	raw, _, err := n.client.GenerateJSON(ctx, buildNarrationPrompt(res))
	if err != nil {
		logging.NarrationWarn("narration model failed, using template: %v", err)
		return fallback
	}

	polished, err := parseNarration(raw, res, fallback)
	if err != nil {
		logging.NarrationWarn("narration rejected, using template: %v", err)
		return fallback
	}
	return polished
}

// buildNarrationPrompt describes the already-resolved decision. The model
// rephrases; it is told nothing it could use to re-decide.
func buildNarrationPrompt(res *types.PreviewResult) string {
	var b strings.Builder
	b.WriteString("You write short, friendly baggage advice. The decision below is final.\n")
	b.WriteString("Rephrase it for a traveler. Do NOT change any verdict and do NOT\n")
	b.WriteString("introduce numbers that are not in the input.\n\n")

	fmt.Fprintf(&b, "Item: %s (category: %s)\n", res.Label, res.Canonical)
	fmt.Fprintf(&b, "Carry-on: %s, conditions: %s\n",
		statusLabel(res.Decision.CarryOn.Status), strings.Join(res.Decision.CarryOn.Badges, ", "))
	fmt.Fprintf(&b, "Checked: %s, conditions: %s\n",
		statusLabel(res.Decision.Checked.Status), strings.Join(res.Decision.Checked.Badges, ", "))
	if res.State == types.StateNeedsReview {
		b.WriteString("This result needs human review; say so in the footnote.\n")
	}

	b.WriteString("\nAnswer with ONLY this JSON:\n")
	b.WriteString(`{"title": "...", "carry_on": {"status_label": "...", "short_reason": "..."},` + "\n")
	b.WriteString(` "checked": {"status_label": "...", "short_reason": "..."},` + "\n")
	b.WriteString(` "bullets": ["..."], "footnote": "..."}` + "\n")
	return b.String()
}

// parseNarration validates the model text. Status labels must match the
// decision and no number may appear that the input did not contain.
func parseNarration(raw string, res *types.PreviewResult, fallback *types.Narration) (*types.Narration, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var wire wireNarration
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("parse narration: %w", err)
	}
	if wire.Title == "" || wire.CarryOn.ShortReason == "" || wire.Checked.ShortReason == "" {
		return nil, fmt.Errorf("narration incomplete")
	}
	if wire.CarryOn.StatusLabel != statusLabel(res.Decision.CarryOn.Status) ||
		wire.Checked.StatusLabel != statusLabel(res.Decision.Checked.Status) {
		return nil, fmt.Errorf("narration altered a status label")
	}

	text := strings.Join(append([]string{wire.Title, wire.CarryOn.ShortReason,
		wire.Checked.ShortReason, wire.Footnote}, wire.Bullets...), "\n")
	if tok, ok := foreignNumber(text, res); !ok {
		return nil, fmt.Errorf("narration invented number %q", tok)
	}

	return &types.Narration{
		Title:       wire.Title,
		CarryOnCard: types.NarrationCard{StatusLabel: wire.CarryOn.StatusLabel, ShortReason: wire.CarryOn.ShortReason},
		CheckedCard: types.NarrationCard{StatusLabel: wire.Checked.StatusLabel, ShortReason: wire.Checked.ShortReason},
		Bullets:     wire.Bullets,
		Badges:      fallback.Badges,
		Footnote:    wire.Footnote,
		Sources:     fallback.Sources,
	}, nil
}

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// foreignNumber scans the model text for numeric tokens that are absent
// from the label, the badges, and the merged conditions. The first foreign
// token fails the whole narration.
func foreignNumber(text string, res *types.PreviewResult) (string, bool) {
	allowed := make(map[string]struct{})
	addFrom := func(s string) {
		for _, tok := range numberRe.FindAllString(s, -1) {
			allowed[tok] = struct{}{}
		}
	}
	addFrom(res.Label)
	for _, badge := range res.Decision.CarryOn.Badges {
		addFrom(badge)
	}
	for _, badge := range res.Decision.Checked.Badges {
		addFrom(badge)
	}
	if res.Engine != nil {
		for _, v := range res.Engine.Conditions {
			addFrom(fmt.Sprint(v))
		}
	}

	for _, tok := range numberRe.FindAllString(text, -1) {
		if _, ok := allowed[tok]; !ok {
			return tok, false
		}
	}
	return "", true
}

// extractJSON pulls the first balanced JSON object out of the response,
// tolerating markdown fences around it.
func extractJSON(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}
