// Package types holds the shared domain types for the baggage decision core.
// Keeping them in one leaf package avoids import cycles between the
// perception, resolver, and preview layers.
package types

// Status is the per-bag verdict for an item.
type Status string

const (
	StatusAllow Status = "allow"
	StatusLimit Status = "limit"
	StatusDeny  Status = "deny"
)

// StatusOrder ranks statuses by restrictiveness. Higher wins when merging.
var StatusOrder = map[Status]int{
	StatusDeny:  3,
	StatusLimit: 2,
	StatusAllow: 1,
}

// ValidStatus reports whether s is a member of the closed status enum.
func ValidStatus(s Status) bool {
	_, ok := StatusOrder[s]
	return ok
}

// MergeStatus combines two statuses on the monotone lattice deny > limit > allow.
// Deny is sticky: no later merge can relax it.
func MergeStatus(current, incoming Status) Status {
	if StatusOrder[incoming] >= StatusOrder[current] {
		return incoming
	}
	return current
}

// MoreRestrictive reports whether a is strictly more restrictive than b.
func MoreRestrictive(a, b Status) bool {
	return StatusOrder[a] > StatusOrder[b]
}

// Bag identifies one of the two carriage slots.
type Bag string

const (
	BagCarryOn Bag = "carry_on"
	BagChecked Bag = "checked"
)

// CabinClass is the closed cabin enumeration used by rule conditions.
type CabinClass string

const (
	CabinEconomy  CabinClass = "economy"
	CabinBusiness CabinClass = "business"
	CabinFirst    CabinClass = "first"
	CabinPrestige CabinClass = "prestige"
)

// ValidCabinClass reports whether c is a known cabin class.
func ValidCabinClass(c CabinClass) bool {
	switch c {
	case CabinEconomy, CabinBusiness, CabinFirst, CabinPrestige:
		return true
	}
	return false
}

// RouteType distinguishes domestic from international itineraries.
type RouteType string

const (
	RouteDomestic      RouteType = "domestic"
	RouteInternational RouteType = "international"
)

// Itinerary is an ordered origin, optional via points, and destination.
// Rescreening is true when a via point re-screens carry-on for the onward
// leg, which invalidates a sealed duty-free STEB.
type Itinerary struct {
	Origin      string   `json:"from" yaml:"from"`
	Destination string   `json:"to" yaml:"to"`
	Via         []string `json:"via,omitempty" yaml:"via"`
	Rescreening bool     `json:"rescreening" yaml:"rescreening"`
}

// Airports returns the ordered airport path origin, via points, destination.
func (it Itinerary) Airports() []string {
	out := make([]string, 0, len(it.Via)+2)
	if it.Origin != "" {
		out = append(out, it.Origin)
	}
	out = append(out, it.Via...)
	if it.Destination != "" {
		out = append(out, it.Destination)
	}
	return out
}

// Segment is one operated flight leg of a preview request.
type Segment struct {
	Leg        string `json:"leg,omitempty"`
	Operating  string `json:"operating"`
	CabinClass string `json:"cabin_class,omitempty"`
	FareClass  string `json:"fare_class,omitempty"`
}

// ItemParams carries the optional numeric attributes of an item. Each field
// is either a finite non-negative number or nil, never a sentinel zero.
type ItemParams struct {
	VolumeML      *float64 `json:"volume_ml,omitempty"`
	WattHours     *float64 `json:"wh,omitempty"`
	Count         *int     `json:"count,omitempty"`
	WeightKG      *float64 `json:"weight_kg,omitempty"`
	ABVPercent    *float64 `json:"abv_percent,omitempty"`
	BladeLengthCM *float64 `json:"blade_length_cm,omitempty"`
}

// ParamName identifies one ItemParams slot. The names match the wire keys.
type ParamName string

const (
	ParamVolumeML      ParamName = "volume_ml"
	ParamWattHours     ParamName = "wh"
	ParamCount         ParamName = "count"
	ParamWeightKG      ParamName = "weight_kg"
	ParamABVPercent    ParamName = "abv_percent"
	ParamBladeLengthCM ParamName = "blade_length_cm"
)

// AllParamNames lists every recognized parameter slot in wire order.
var AllParamNames = []ParamName{
	ParamVolumeML, ParamWattHours, ParamCount,
	ParamWeightKG, ParamABVPercent, ParamBladeLengthCM,
}

// Get returns the numeric value of the named slot and whether it is present.
// Count is widened to float64 so callers can compare uniformly against caps.
func (p ItemParams) Get(name ParamName) (float64, bool) {
	switch name {
	case ParamVolumeML:
		if p.VolumeML != nil {
			return *p.VolumeML, true
		}
	case ParamWattHours:
		if p.WattHours != nil {
			return *p.WattHours, true
		}
	case ParamCount:
		if p.Count != nil {
			return float64(*p.Count), true
		}
	case ParamWeightKG:
		if p.WeightKG != nil {
			return *p.WeightKG, true
		}
	case ParamABVPercent:
		if p.ABVPercent != nil {
			return *p.ABVPercent, true
		}
	case ParamBladeLengthCM:
		if p.BladeLengthCM != nil {
			return *p.BladeLengthCM, true
		}
	}
	return 0, false
}

// Has reports whether the named slot is populated.
func (p ItemParams) Has(name ParamName) bool {
	_, ok := p.Get(name)
	return ok
}

// Merge fills nil slots of p from other and returns the result. Explicit
// request params always win over label-derived hints.
func (p ItemParams) Merge(other ItemParams) ItemParams {
	out := p
	if out.VolumeML == nil {
		out.VolumeML = other.VolumeML
	}
	if out.WattHours == nil {
		out.WattHours = other.WattHours
	}
	if out.Count == nil {
		out.Count = other.Count
	}
	if out.WeightKG == nil {
		out.WeightKG = other.WeightKG
	}
	if out.ABVPercent == nil {
		out.ABVPercent = other.ABVPercent
	}
	if out.BladeLengthCM == nil {
		out.BladeLengthCM = other.BladeLengthCM
	}
	return out
}

// DutyFree marks an item bought airside, optionally sealed in a STEB.
type DutyFree struct {
	IsDF       bool `json:"is_df"`
	STEBSealed bool `json:"steb_sealed"`
}

// PreviewRequest is the input of one preview pipeline run.
type PreviewRequest struct {
	Label      string     `json:"label"`
	Locale     string     `json:"locale,omitempty"`
	ReqID      string     `json:"req_id,omitempty"`
	Itinerary  Itinerary  `json:"itinerary"`
	Segments   []Segment  `json:"segments,omitempty"`
	ItemParams ItemParams `json:"item_params"`
	DutyFree   DutyFree   `json:"duty_free"`
}
