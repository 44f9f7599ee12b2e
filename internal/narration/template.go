package narration

import (
	"fmt"
	"strings"

	"cherrypick/internal/types"
)

// statusLabels are the traveler-facing names of the verdict statuses.
var statusLabels = map[types.Status]string{
	types.StatusAllow: "Allowed",
	types.StatusLimit: "Allowed with conditions",
	types.StatusDeny:  "Not allowed",
}

func statusLabel(s types.Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Needs review"
}

// titleFor renders a canonical key as a display title, e.g. "power_bank"
// becomes "Power bank".
func titleFor(canonical, label string) string {
	if canonical == "" {
		return label
	}
	words := strings.Split(canonical, "_")
	if words[0] != "" {
		words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	}
	return strings.Join(words, " ")
}

// templateNarration renders the deterministic fallback text. It is built
// purely from the resolved decision, so it can never contradict it.
func templateNarration(res *types.PreviewResult) *types.Narration {
	d := res.Decision
	n := &types.Narration{
		Title:       titleFor(res.Canonical, res.Label),
		CarryOnCard: templateCard(types.BagCarryOn, d.CarryOn),
		CheckedCard: templateCard(types.BagChecked, d.Checked),
		Badges:      unionBadges(d),
	}

	for _, badge := range d.CarryOn.Badges {
		n.Bullets = append(n.Bullets, "Carry-on: "+badge)
	}
	for _, badge := range d.Checked.Badges {
		n.Bullets = append(n.Bullets, "Checked: "+badge)
	}

	if res.Engine != nil {
		for _, src := range res.Engine.Sources {
			n.Sources = append(n.Sources, src.Layer+"/"+src.Code)
		}
	}
	if res.State == types.StateNeedsReview {
		n.Footnote = "Confirm with your airline before you fly."
	}
	return n
}

func templateCard(bag types.Bag, slot types.VerdictSlot) types.NarrationCard {
	card := types.NarrationCard{StatusLabel: statusLabel(slot.Status)}
	where := "in carry-on"
	if bag == types.BagChecked {
		where = "in checked baggage"
	}
	switch slot.Status {
	case types.StatusAllow:
		card.ShortReason = fmt.Sprintf("Fine to pack %s.", where)
	case types.StatusLimit:
		if len(slot.Badges) > 0 {
			card.ShortReason = fmt.Sprintf("Allowed %s if you meet: %s.", where, strings.Join(slot.Badges, ", "))
		} else {
			card.ShortReason = fmt.Sprintf("Allowed %s with conditions.", where)
		}
	case types.StatusDeny:
		card.ShortReason = fmt.Sprintf("Cannot travel %s.", where)
	}
	return card
}

func unionBadges(d types.Decision) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, badge := range append(append([]string{}, d.CarryOn.Badges...), d.Checked.Badges...) {
		if _, dup := seen[badge]; dup {
			continue
		}
		seen[badge] = struct{}{}
		out = append(out, badge)
	}
	return out
}
