package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cherrypick/internal/types"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	allowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	limitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	denyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	badgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	reviewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

func statusStyle(s types.Status) lipgloss.Style {
	switch s {
	case types.StatusAllow:
		return allowStyle
	case types.StatusDeny:
		return denyStyle
	default:
		return limitStyle
	}
}

func statusWord(s types.Status) string {
	switch s {
	case types.StatusAllow:
		return "ALLOW"
	case types.StatusDeny:
		return "DENY"
	case types.StatusLimit:
		return "LIMIT"
	}
	return strings.ToUpper(string(s))
}

// renderResult prints one preview result as a terminal card.
func renderResult(res *types.PreviewResult, withTrace bool) string {
	var b strings.Builder

	title := res.Label
	if res.Narration != nil && res.Narration.Title != "" {
		title = res.Narration.Title
	}
	fmt.Fprintf(&b, "\n%s", titleStyle.Render(title))
	if res.Canonical != "" {
		fmt.Fprintf(&b, " %s", mutedStyle.Render("("+res.Canonical+")"))
	}
	if res.Cached {
		fmt.Fprintf(&b, " %s", mutedStyle.Render("[cached]"))
	}
	b.WriteString("\n\n")

	renderSlot(&b, "Carry-on", res.Decision.CarryOn, cardFor(res, types.BagCarryOn))
	renderSlot(&b, "Checked ", res.Decision.Checked, cardFor(res, types.BagChecked))

	if res.Narration != nil {
		for _, bullet := range res.Narration.Bullets {
			fmt.Fprintf(&b, "  - %s\n", bullet)
		}
		if res.Narration.Footnote != "" {
			fmt.Fprintf(&b, "\n%s\n", mutedStyle.Render(res.Narration.Footnote))
		}
	}

	if res.State == types.StateNeedsReview {
		fmt.Fprintf(&b, "\n%s%s\n", reviewStyle.Render("NEEDS REVIEW"), renderFlags(res.Flags))
	}

	if res.Engine != nil && len(res.Engine.Sources) > 0 {
		var srcs []string
		for _, s := range res.Engine.Sources {
			srcs = append(srcs, s.Layer+"/"+s.Code)
		}
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render("Sources: "+strings.Join(srcs, ", ")))
	}

	if withTrace && res.Engine != nil {
		b.WriteString("\nTrace:\n")
		for _, entry := range res.Engine.Trace {
			fmt.Fprintf(&b, "  %-40s %s spec=%d %v\n",
				entry.RuleID, entry.Severity, entry.Specificity, entry.Effect)
		}
	}
	return b.String()
}

func renderSlot(b *strings.Builder, name string, slot types.VerdictSlot, card *types.NarrationCard) {
	fmt.Fprintf(b, "  %s  %s", name, statusStyle(slot.Status).Render(statusWord(slot.Status)))
	if len(slot.Badges) > 0 {
		fmt.Fprintf(b, "  %s", badgeStyle.Render(strings.Join(slot.Badges, " | ")))
	}
	b.WriteString("\n")
	if card != nil && card.ShortReason != "" {
		fmt.Fprintf(b, "            %s\n", mutedStyle.Render(card.ShortReason))
	}
}

func cardFor(res *types.PreviewResult, bag types.Bag) *types.NarrationCard {
	if res.Narration == nil {
		return nil
	}
	if bag == types.BagChecked {
		return &res.Narration.CheckedCard
	}
	return &res.Narration.CarryOnCard
}

// renderFlags summarizes why a result needs review.
func renderFlags(f types.Flags) string {
	var reasons []string
	if f.ValidationError != "" {
		reasons = append(reasons, "model output rejected")
	}
	if f.LLMError != "" {
		reasons = append(reasons, "model unavailable")
	}
	if len(f.MissingParams) > 0 {
		reasons = append(reasons, "missing "+strings.Join(f.MissingParams, ", "))
	}
	if f.LowConfidence {
		reasons = append(reasons, "low confidence")
	}
	if f.Conflict {
		reasons = append(reasons, "model disagreed with rules")
	}
	if f.Override {
		reasons = append(reasons, "category always reviewed")
	}
	if f.LLMNeedsReview {
		reasons = append(reasons, "model asked for review")
	}
	if len(reasons) == 0 {
		return ""
	}
	return mutedStyle.Render(" (" + strings.Join(reasons, "; ") + ")")
}
