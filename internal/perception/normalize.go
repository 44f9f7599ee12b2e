package perception

import (
	"regexp"
	"strconv"
	"strings"

	"cherrypick/internal/types"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	// Punctuation that never carries meaning in an item label. Unit tokens
	// like "350ml" and "x3" survive normalization.
	punctRe = regexp.MustCompile(`[()\[\]{}<>!?;:"“”‘’]`)

	unitRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(ml|l|wh|kg|g|cm|%)`)
	countRe = regexp.MustCompile(`(?i)(?:[x×*]\s*(\d+)|(\d+)\s*(?:pcs?|pack|개))\b`)
)

// NormalizeLabel lowercases, strips decorative punctuation, and collapses
// whitespace. The result feeds the cache fingerprint and the prompt.
func NormalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = punctRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractHints parses numeric tokens the label states verbatim ("350ml",
// "200Wh", "x3", "40%", "2kg", "70cm") into ItemParams. Hints never
// override explicit request params; the caller merges them underneath.
func ExtractHints(label string) types.ItemParams {
	var hints types.ItemParams
	norm := NormalizeLabel(label)

	for _, m := range unitRe.FindAllStringSubmatch(norm, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil || value < 0 {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "ml":
			if hints.VolumeML == nil {
				hints.VolumeML = &value
			}
		case "l":
			// Litres only when it is clearly a volume, not "1l zip"
			ml := value * 1000
			if hints.VolumeML == nil && value <= 10 {
				hints.VolumeML = &ml
			}
		case "wh":
			if hints.WattHours == nil {
				hints.WattHours = &value
			}
		case "kg":
			if hints.WeightKG == nil {
				hints.WeightKG = &value
			}
		case "g":
			kg := value / 1000
			if hints.WeightKG == nil {
				hints.WeightKG = &kg
			}
		case "cm":
			if hints.BladeLengthCM == nil {
				hints.BladeLengthCM = &value
			}
		case "%":
			if hints.ABVPercent == nil && value <= 100 {
				hints.ABVPercent = &value
			}
		}
	}

	if m := countRe.FindStringSubmatch(norm); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		if n, err := strconv.Atoi(digits); err == nil && n > 0 && hints.Count == nil {
			hints.Count = &n
		}
	}

	return hints
}
