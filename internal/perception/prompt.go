package perception

import (
	"encoding/json"
	"fmt"
	"strings"

	"cherrypick/internal/taxonomy"
	"cherrypick/internal/types"
)

const promptHeader = `You are the item classifier of an air-travel baggage advisor.
Given one item label, classify it into EXACTLY ONE canonical category from
the closed vocabulary below and propose a per-bag verdict draft.

How to decide:
- Match the item itself, not its packaging or brand.
- If the label names a liquid, gel, or aerosol, prefer the liquids keys.
- Batteries: "power_bank" for standalone chargers, "lithium_battery_spare"
  for loose batteries, "lithium_battery_installed" for devices.
- If the item clearly has no transport risk, use a benign key
  (benign_general when nothing more specific fits).
- Never invent a category outside the vocabulary. Never invent numeric
  values: params may only contain numbers stated verbatim in the label.
- status per bag is one of "allow", "limit", "deny".
- needs_review is true only when you genuinely cannot classify.

Output STRICT JSON, no markdown, exactly this shape:
{
  "canonical": "<taxonomy key>",
  "params": {"volume_ml": null, "wh": null, "count": null,
             "weight_kg": null, "abv_percent": null, "blade_length_cm": null},
  "carry_on": {"status": "allow|limit|deny", "badges": []},
  "checked":  {"status": "allow|limit|deny", "badges": []},
  "needs_review": false,
  "signals": {
    "matched_terms": ["2 to 4 verbatim substrings of the label"],
    "confidence": 0.0,
    "notes": ""
  }
}
`

// BuildClassifierPrompt assembles the full classification prompt: the fixed
// instructions, the taxonomy-derived vocabulary, and the request context.
func BuildClassifierPrompt(req types.PreviewRequest, hints types.ItemParams, synonymHints []SynonymHint, tax *taxonomy.Engine) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n")
	b.WriteString(tax.PromptSection())

	b.WriteString("\n## Item\n")
	fmt.Fprintf(&b, "label: %q\n", req.Label)
	fmt.Fprintf(&b, "normalized_label: %q\n", NormalizeLabel(req.Label))
	if req.Locale != "" {
		fmt.Fprintf(&b, "locale: %s\n", req.Locale)
	}

	if airports := req.Itinerary.Airports(); len(airports) > 0 {
		fmt.Fprintf(&b, "route: %s\n", strings.Join(airports, " -> "))
	}
	if req.DutyFree.IsDF {
		fmt.Fprintf(&b, "duty_free: true (steb_sealed=%v)\n", req.DutyFree.STEBSealed)
	}

	if blob, err := json.Marshal(hints); err == nil && string(blob) != "{}" {
		fmt.Fprintf(&b, "item_params_hint: %s\n", blob)
		b.WriteString("(hints restate what the label already says; do not add numbers beyond them)\n")
	}

	if len(synonymHints) > 0 {
		b.WriteString("\nSynonym matches (non-authoritative, similarity-ranked):\n")
		for _, h := range synonymHints {
			fmt.Fprintf(&b, "- %q -> %s (%.2f)\n", h.Term, h.Canonical, h.Similarity)
		}
	}

	b.WriteString("\nRespond with the JSON object only.\n")
	return b.String()
}
