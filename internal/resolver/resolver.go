// Package resolver turns a classified item plus an itinerary into a
// deterministic per-bag decision. It collects candidate rules from the
// country, airline, and international layers, filters them by the itinerary
// context, and merges them monotonically: a deny from any layer can never be
// softened by a later rule.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cherrypick/internal/logging"
	"cherrypick/internal/regulation"
	"cherrypick/internal/taxonomy"
	"cherrypick/internal/types"
)

// Query is one resolution request. Params must already be the effective
// merged parameters (request over label hints over model extraction).
type Query struct {
	Canonical string
	Itinerary types.Itinerary
	Segments  []types.Segment
	Params    types.ItemParams
	DutyFree  types.DutyFree
}

// Resolver merges layered regulation rules over taxonomy defaults.
type Resolver struct {
	store    *regulation.Store
	tax      *taxonomy.Engine
	airports *AirportIndex
}

func New(store *regulation.Store, tax *taxonomy.Engine, airports *AirportIndex) *Resolver {
	if airports == nil {
		airports = NewAirportIndex()
	}
	return &Resolver{store: store, tax: tax, airports: airports}
}

// cabinFare is one segment's condition pair for rule matching.
type cabinFare struct {
	cabin types.CabinClass
	fare  string
}

// candidate is a rule that survived condition filtering, tagged with the
// bucket it came from so group selection can pick one winner per bucket.
type candidate struct {
	rule   *regulation.Rule
	bucket string
	order  int // position within the bucket, for deterministic ties
}

// Resolve produces the merged decision for one item on one itinerary.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*types.EngineResult, error) {
	if q.Canonical == "" {
		return nil, fmt.Errorf("resolve: empty canonical category")
	}
	if !r.tax.IsKnown(q.Canonical) {
		return nil, fmt.Errorf("resolve: unknown category %q", q.Canonical)
	}

	timer := logging.StartTimer(logging.CategoryResolver, fmt.Sprintf("resolve %s", q.Canonical))
	defer timer.StopWithThreshold(50 * time.Millisecond)

	route := r.airports.RouteType(q.Itinerary)
	countries, unknown := r.airports.Countries(q.Itinerary)
	if len(unknown) > 0 {
		logging.ResolverDebug("unknown airports %v, treating route as international", unknown)
	}

	pairs := segmentPairs(q.Segments)
	airlinePairs := pairsByAirline(q.Segments)

	benign := r.tax.IsBenign(q.Canonical)
	cands, err := r.collect(ctx, q.Canonical, benign, countries, airlinePairs)
	if err != nil {
		return nil, err
	}

	selected := selectMatching(cands, route, pairs, airlinePairs)

	res := &types.EngineResult{
		Canonical:  q.Canonical,
		RouteType:  route,
		Decision:   r.tax.DefaultDecision(q.Canonical),
		Conditions: make(map[string]any),
	}
	res.Trace = append(res.Trace, types.TraceEntry{
		RuleID:   "taxonomy/" + q.Canonical,
		Layer:    "taxonomy",
		Code:     "default",
		Severity: "template",
		Effect: map[types.Bag]types.Status{
			types.BagCarryOn: res.Decision.CarryOn.Status,
			types.BagChecked: res.Decision.Checked.Status,
		},
	})

	for _, c := range selected {
		r.applyRule(res, c.rule, q)
	}

	finalizeConditions(res)
	res.Sources = sourceRefs(selected)

	logging.ResolverDebug("resolved %s route=%s carry=%s checked=%s rules=%d",
		q.Canonical, route, res.Decision.CarryOn.Status, res.Decision.Checked.Status, len(selected))
	return res, nil
}

// collect gathers candidate rules from every applicable layer. Benign
// categories only consult the country layer: an explicit national
// prohibition can still block an otherwise harmless item.
func (r *Resolver) collect(ctx context.Context, canonical string, benign bool, countries []string, airlinePairs map[string][]cabinFare) ([]candidate, error) {
	var (
		mu    sync.Mutex
		cands []candidate
	)
	add := func(bucket string, rules []*regulation.Rule) {
		mu.Lock()
		defer mu.Unlock()
		for i, rule := range rules {
			cands = append(cands, candidate{rule: rule, bucket: bucket, order: i})
		}
	}

	g, _ := errgroup.WithContext(ctx)
	for _, country := range countries {
		country := country
		g.Go(func() error {
			add("country/"+country, r.store.Find(regulation.ScopeCountry, country, canonical))
			return nil
		})
	}
	if !benign {
		for airline := range airlinePairs {
			airline := airline
			g.Go(func() error {
				add("airline/"+airline, r.store.Find(regulation.ScopeAirline, airline, canonical))
				return nil
			})
		}
		g.Go(func() error {
			add("international/INTL", r.store.Find(regulation.ScopeInternational, "INTL", canonical))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cands, nil
}

// selectMatching filters candidates by the itinerary context and keeps the
// single most specific rule per bucket. Within one scope+code file the most
// conditional record that still matches wins; the rest are shadowed.
func selectMatching(cands []candidate, route types.RouteType, pairs []cabinFare, airlinePairs map[string][]cabinFare) []candidate {
	best := make(map[string]candidate)
	for _, c := range cands {
		matchPairs := pairs
		if c.rule.Scope == regulation.ScopeAirline {
			matchPairs = airlinePairs[c.rule.Code]
		}
		if !matchesAny(c.rule, route, matchPairs) {
			continue
		}
		cur, ok := best[c.bucket]
		if !ok || c.rule.Specificity() > cur.rule.Specificity() ||
			(c.rule.Specificity() == cur.rule.Specificity() && c.order < cur.order) {
			best[c.bucket] = c
		}
	}

	selected := make([]candidate, 0, len(best))
	for _, c := range best {
		selected = append(selected, c)
	}
	sort.Slice(selected, func(i, j int) bool {
		a, b := selected[i].rule, selected[j].rule
		if a.Specificity() != b.Specificity() {
			return a.Specificity() > b.Specificity()
		}
		if regulation.LayerPriority[a.Scope] != regulation.LayerPriority[b.Scope] {
			return regulation.LayerPriority[a.Scope] < regulation.LayerPriority[b.Scope]
		}
		return a.ID < b.ID
	})
	return selected
}

// matchesAny accepts a rule when its condition vector matches the route and
// at least one cabin/fare pair.
func matchesAny(rule *regulation.Rule, route types.RouteType, pairs []cabinFare) bool {
	if len(pairs) == 0 {
		pairs = []cabinFare{{}}
	}
	for _, p := range pairs {
		if rule.Matches(route, p.cabin, p.fare) {
			return true
		}
	}
	return false
}

// applyRule merges one rule into the running decision.
func (r *Resolver) applyRule(res *types.EngineResult, rule *regulation.Rule, q Query) {
	violated, violations := capViolations(rule, q)

	effect := make(map[types.Bag]types.Status)
	apply := func(bag types.Bag, slot *types.VerdictSlot, allowed *bool) {
		var st types.Status
		switch {
		case allowed != nil && !*allowed:
			st = types.StatusDeny
		case rule.Severity == regulation.SeverityBlock:
			st = types.StatusDeny
		case rule.Severity == regulation.SeverityWarn && violated:
			st = types.StatusDeny
		case rule.Severity == regulation.SeverityWarn:
			st = types.StatusLimit
		default:
			st = types.StatusAllow
		}
		effect[bag] = st
		slot.Status = types.MergeStatus(slot.Status, st)
		if st == types.StatusLimit || st == types.StatusDeny {
			slot.ReasonCodes = appendUnique(slot.ReasonCodes, rule.ReasonCode)
		}
		if st == types.StatusLimit {
			for _, b := range rule.Badges {
				slot.Badges = appendUnique(slot.Badges, b)
			}
		}
	}

	// Explicit applicability flags scope the rule to the bags they name.
	// A rule with neither flag speaks about both bags.
	both := rule.CarryOnAllowed == nil && rule.CheckedAllowed == nil
	if both || rule.CarryOnAllowed != nil {
		apply(types.BagCarryOn, &res.Decision.CarryOn, rule.CarryOnAllowed)
	}
	if both || rule.CheckedAllowed != nil {
		apply(types.BagChecked, &res.Decision.Checked, rule.CheckedAllowed)
	}

	foldConditions(res.Conditions, rule)

	entry := types.TraceEntry{
		RuleID:      rule.ID,
		Layer:       string(rule.Scope),
		Code:        rule.Code,
		Severity:    string(rule.Severity),
		Specificity: rule.Specificity(),
		Effect:      effect,
		ReasonCodes: []string{rule.ReasonCode},
		Notes:       rule.Notes,
	}
	if len(violations) > 0 {
		entry.Extra = map[string]string{"violations": fmt.Sprint(violations)}
	}
	res.Trace = append(res.Trace, entry)
}

// capViolations checks the rule's numeric caps against the item params and
// its STEB obligation against the duty-free context. Missing params never
// count as violations; they surface through the missing-params flag instead.
func capViolations(rule *regulation.Rule, q Query) (bool, []string) {
	var violations []string
	for capKey, limit := range rule.Caps {
		param := regulation.CapParam[capKey]
		if param == "" {
			continue // aggregate caps are conditions, not per-item checks
		}
		v, ok := q.Params.Get(param)
		if ok && v > limit {
			violations = append(violations, fmt.Sprintf("%s %g > %g", param, v, limit))
		}
	}
	if rule.Bools["steb_required"] && !stebSatisfied(q) {
		violations = append(violations, "steb_required unmet")
	}
	sort.Strings(violations)
	return len(violations) > 0, violations
}

// stebSatisfied holds when the item travels in a sealed tamper-evident bag
// and no transit point rescreens it. Rescreening breaks the seal's chain of
// custody, so the obligation is unmet even for a sealed purchase.
func stebSatisfied(q Query) bool {
	return q.DutyFree.IsDF && q.DutyFree.STEBSealed && !q.Itinerary.Rescreening
}

// foldConditions merges one rule's constraints into the aggregate condition
// map. Numeric caps fold min-wise, obligations fold or-wise: the traveler
// must satisfy the tightest cap any layer imposes.
func foldConditions(conditions map[string]any, rule *regulation.Rule) {
	for capKey, v := range rule.Caps {
		if cur, ok := conditions[capKey].(float64); !ok || v < cur {
			conditions[capKey] = v
		}
	}
	for boolKey, v := range rule.Bools {
		if !v {
			continue
		}
		conditions[boolKey] = true
	}
}

// finalizeConditions derives display badges from the aggregate conditions
// and attaches them to any bag that is limited rather than denied.
func finalizeConditions(res *types.EngineResult) {
	if len(res.Conditions) == 0 {
		res.Conditions = nil
		return
	}
	badges := conditionBadges(res.Conditions)
	for _, slot := range []*types.VerdictSlot{&res.Decision.CarryOn, &res.Decision.Checked} {
		if slot.Status != types.StatusLimit {
			continue
		}
		for _, b := range badges {
			slot.Badges = appendUnique(slot.Badges, b)
		}
	}
}

// sourceRefs lists the contributing scope+code pairs, most specific first.
func sourceRefs(selected []candidate) []types.SourceRef {
	var refs []types.SourceRef
	seen := make(map[types.SourceRef]struct{})
	for _, c := range selected {
		ref := types.SourceRef{Layer: string(c.rule.Scope), Code: c.rule.Code}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

func segmentPairs(segments []types.Segment) []cabinFare {
	pairs := make([]cabinFare, 0, len(segments))
	for _, s := range segments {
		pairs = append(pairs, cabinFare{cabin: types.CabinClass(s.CabinClass), fare: s.FareClass})
	}
	return pairs
}

// pairsByAirline groups cabin/fare pairs under each operating carrier, so an
// airline rule only sees the segments that airline actually flies.
func pairsByAirline(segments []types.Segment) map[string][]cabinFare {
	out := make(map[string][]cabinFare)
	for _, s := range segments {
		if s.Operating == "" {
			continue
		}
		out[s.Operating] = append(out[s.Operating], cabinFare{cabin: types.CabinClass(s.CabinClass), fare: s.FareClass})
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
