package resolver

import "strconv"

// badgeOrder fixes the display order of derived badges.
var badgeOrder = []string{
	"max_container_ml",
	"zip_bag_1l",
	"max_total_bag_l",
	"max_wh",
	"max_pieces",
	"max_weight_kg",
	"max_abv_percent",
	"max_blade_cm",
	"size_sum_cm",
	"airline_approval",
	"steb_required",
}

// conditionBadges renders the aggregate condition map as short display
// badges, e.g. {"max_wh": 100, "airline_approval": true} becomes
// ["100Wh", "Airline approval"].
func conditionBadges(conditions map[string]any) []string {
	var badges []string
	for _, key := range badgeOrder {
		raw, ok := conditions[key]
		if !ok {
			continue
		}
		switch key {
		case "max_container_ml":
			badges = append(badges, num(raw)+"ml")
		case "zip_bag_1l":
			badges = append(badges, "1L zip bag")
		case "max_total_bag_l":
			// The zip bag badge already names the aggregate limit
			if _, zip := conditions["zip_bag_1l"]; !zip {
				badges = append(badges, num(raw)+"L total")
			}
		case "max_wh":
			badges = append(badges, num(raw)+"Wh")
		case "max_pieces":
			badges = append(badges, num(raw)+"pc")
		case "max_weight_kg":
			badges = append(badges, num(raw)+"kg")
		case "max_abv_percent":
			badges = append(badges, num(raw)+"% ABV")
		case "max_blade_cm":
			badges = append(badges, num(raw)+"cm blade")
		case "size_sum_cm":
			badges = append(badges, num(raw)+"cm total")
		case "airline_approval":
			badges = append(badges, "Airline approval")
		case "steb_required":
			badges = append(badges, "STEB sealed")
		}
	}
	return badges
}

func num(v any) string {
	f, ok := v.(float64)
	if !ok {
		return "?"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
