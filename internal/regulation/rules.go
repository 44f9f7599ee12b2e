// Package regulation loads and indexes layered carriage rules: country
// security rules, airline policies, and the international dangerous-goods
// baseline. Files are JSON, one per scope+code; loading is strict and a bad
// file never reaches the live index.
package regulation

import (
	"fmt"
	"math"

	"cherrypick/internal/types"
)

// Scope is the regulation layer a file belongs to.
type Scope string

const (
	ScopeCountry       Scope = "country"
	ScopeAirline       Scope = "airline"
	ScopeInternational Scope = "international"
)

// LayerPriority orders scopes for specificity tie-breaks. Lower is more
// authoritative: country security beats airline policy beats the
// international baseline.
var LayerPriority = map[Scope]int{
	ScopeCountry:       0,
	ScopeAirline:       1,
	ScopeInternational: 2,
}

// Severity grades a rule's effect.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityBlock Severity = "block"
)

func validSeverity(s Severity) bool {
	switch s {
	case SeverityInfo, SeverityWarn, SeverityBlock:
		return true
	}
	return false
}

// File is the on-disk regulation format.
type File struct {
	Scope Scope      `json:"scope"`
	Code  string     `json:"code"`
	Name  string     `json:"name,omitempty"`
	Rules []RuleSpec `json:"rules"`
}

// RuleSpec is one record as written by regulation authors. Constraints is a
// free-form object validated against the closed constraint vocabulary below.
type RuleSpec struct {
	ItemCategory string         `json:"item_category"`
	Severity     Severity       `json:"severity"`
	Constraints  map[string]any `json:"constraints,omitempty"`
	Notes        string         `json:"notes,omitempty"`
}

// Numeric caps a rule may impose. The mapped param is what the cap is
// checked against when the item carries that parameter.
var CapParam = map[string]types.ParamName{
	"max_container_ml": types.ParamVolumeML,
	"max_total_bag_l":  "", // aggregate limit, never violated by a single item
	"max_wh":           types.ParamWattHours,
	"max_pieces":       types.ParamCount,
	"max_weight_kg":    types.ParamWeightKG,
	"max_abv_percent":  types.ParamABVPercent,
	"max_blade_cm":     types.ParamBladeLengthCM,
	"size_sum_cm":      "", // dimensional limit, not an item param
}

// Boolean obligations a rule may impose.
var boolKeys = map[string]struct{}{
	"zip_bag_1l":       {},
	"airline_approval": {},
	"steb_required":    {},
}

// Rule is a compiled record ready for matching.
type Rule struct {
	ID           string
	Scope        Scope
	Code         string
	ItemCategory string
	Severity     Severity
	Notes        string

	// Condition vector. Nil means "any".
	RouteType  *types.RouteType
	CabinClass *types.CabinClass
	FareClass  *string

	// Bag applicability. Nil means the rule does not speak about that bag.
	CarryOnAllowed *bool
	CheckedAllowed *bool

	Caps       map[string]float64
	Bools      map[string]bool
	Badges     []string
	ReasonCode string
}

// Specificity counts the non-nil condition fields. More conditions matched
// means a more specific rule.
func (r *Rule) Specificity() int {
	n := 0
	if r.RouteType != nil {
		n++
	}
	if r.CabinClass != nil {
		n++
	}
	if r.FareClass != nil {
		n++
	}
	return n
}

// Matches reports whether the rule's condition vector accepts the given
// itinerary context. Nil conditions match anything.
func (r *Rule) Matches(route types.RouteType, cabin types.CabinClass, fare string) bool {
	if r.RouteType != nil && *r.RouteType != route {
		return false
	}
	if r.CabinClass != nil && *r.CabinClass != cabin {
		return false
	}
	if r.FareClass != nil && *r.FareClass != fare {
		return false
	}
	return true
}

// conditionKey is the identity vector used for collision detection: two
// records in one file may not share category and conditions.
func (r *Rule) conditionKey() string {
	rt, cc, fc := "*", "*", "*"
	if r.RouteType != nil {
		rt = string(*r.RouteType)
	}
	if r.CabinClass != nil {
		cc = string(*r.CabinClass)
	}
	if r.FareClass != nil {
		fc = *r.FareClass
	}
	return fmt.Sprintf("%s|%s|%s|%s", r.ItemCategory, rt, cc, fc)
}

// compile validates and converts one RuleSpec into a Rule.
func compile(f File, idx int, spec RuleSpec) (*Rule, error) {
	if spec.ItemCategory == "" {
		return nil, fmt.Errorf("rule %d: empty item_category", idx)
	}
	if !validSeverity(spec.Severity) {
		return nil, fmt.Errorf("rule %d (%s): invalid severity %q", idx, spec.ItemCategory, spec.Severity)
	}

	code := f.Code
	if f.Scope == ScopeInternational && code == "" {
		code = "INTL"
	}

	r := &Rule{
		ID:           fmt.Sprintf("%s/%s/%s#%d", f.Scope, code, spec.ItemCategory, idx),
		Scope:        f.Scope,
		Code:         code,
		ItemCategory: spec.ItemCategory,
		Severity:     spec.Severity,
		Notes:        spec.Notes,
		Caps:         make(map[string]float64),
		Bools:        make(map[string]bool),
	}

	for key, raw := range spec.Constraints {
		switch key {
		case "route_type":
			s, ok := raw.(string)
			rt := types.RouteType(s)
			if !ok || (rt != types.RouteDomestic && rt != types.RouteInternational) {
				return nil, fmt.Errorf("rule %d (%s): bad route_type %v", idx, spec.ItemCategory, raw)
			}
			r.RouteType = &rt
		case "cabin_class":
			s, ok := raw.(string)
			cc := types.CabinClass(s)
			if !ok || !types.ValidCabinClass(cc) {
				return nil, fmt.Errorf("rule %d (%s): bad cabin_class %v", idx, spec.ItemCategory, raw)
			}
			r.CabinClass = &cc
		case "fare_class":
			s, ok := raw.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("rule %d (%s): bad fare_class %v", idx, spec.ItemCategory, raw)
			}
			r.FareClass = &s
		case "carry_on_allowed":
			b, ok := raw.(bool)
			if !ok {
				return nil, fmt.Errorf("rule %d (%s): carry_on_allowed must be bool", idx, spec.ItemCategory)
			}
			r.CarryOnAllowed = &b
		case "checked_allowed":
			b, ok := raw.(bool)
			if !ok {
				return nil, fmt.Errorf("rule %d (%s): checked_allowed must be bool", idx, spec.ItemCategory)
			}
			r.CheckedAllowed = &b
		case "badges":
			list, ok := raw.([]any)
			if !ok {
				return nil, fmt.Errorf("rule %d (%s): badges must be a string array", idx, spec.ItemCategory)
			}
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("rule %d (%s): badges must be a string array", idx, spec.ItemCategory)
				}
				r.Badges = append(r.Badges, s)
			}
		case "reason_code":
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("rule %d (%s): reason_code must be string", idx, spec.ItemCategory)
			}
			r.ReasonCode = s
		default:
			if _, isCap := CapParam[key]; isCap {
				n, ok := toFloat(raw)
				if !ok || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
					return nil, fmt.Errorf("rule %d (%s): cap %s must be a non-negative number", idx, spec.ItemCategory, key)
				}
				r.Caps[key] = n
				continue
			}
			if _, isBool := boolKeys[key]; isBool {
				b, ok := raw.(bool)
				if !ok {
					return nil, fmt.Errorf("rule %d (%s): %s must be bool", idx, spec.ItemCategory, key)
				}
				r.Bools[key] = b
				continue
			}
			return nil, fmt.Errorf("rule %d (%s): unknown constraint %q", idx, spec.ItemCategory, key)
		}
	}

	if r.ReasonCode == "" {
		r.ReasonCode = fmt.Sprintf("%s:%s:%s", f.Scope, code, spec.ItemCategory)
	}
	return r, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
