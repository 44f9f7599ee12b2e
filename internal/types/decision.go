package types

// VerdictSlot is the per-bag verdict with display badges and the reason
// codes of the rules that produced it.
type VerdictSlot struct {
	Status      Status   `json:"status"`
	Badges      []string `json:"badges"`
	ReasonCodes []string `json:"reason_codes,omitempty"`
}

// Decision is the pair of slot verdicts for one item.
type Decision struct {
	CarryOn VerdictSlot `json:"carry_on"`
	Checked VerdictSlot `json:"checked"`
}

// Slot returns the verdict for the given bag.
func (d Decision) Slot(bag Bag) VerdictSlot {
	if bag == BagChecked {
		return d.Checked
	}
	return d.CarryOn
}

// DraftSlot is the model's proposed verdict for one bag. Badges are free
// text from the model and are only trusted after the guard has validated
// the payload.
type DraftSlot struct {
	Status Status   `json:"status"`
	Badges []string `json:"badges"`
}

// Signals are the model's self-reported evidence.
type Signals struct {
	MatchedTerms []string `json:"matched_terms"`
	Confidence   float64  `json:"confidence"`
	Notes        string   `json:"notes,omitempty"`
}

// ModelInfo records which model produced a draft and at what temperature.
type ModelInfo struct {
	Name        string  `json:"name"`
	Temperature float64 `json:"temperature"`
}

// Draft is the validated classifier output: a canonical category, any
// numeric params the model read off the label, and a proposed verdict per
// bag. It is advisory; the resolver's merged decision is authoritative.
type Draft struct {
	Canonical   string     `json:"canonical"`
	Params      ItemParams `json:"params"`
	CarryOn     DraftSlot  `json:"carry_on"`
	Checked     DraftSlot  `json:"checked"`
	NeedsReview bool       `json:"needs_review"`
	Signals     Signals    `json:"signals"`
	ModelInfo   ModelInfo  `json:"model_info"`
}

// SourceRef names one regulation source that contributed to a decision,
// ordered most specific first.
type SourceRef struct {
	Layer string `json:"layer"`
	Code  string `json:"code"`
}

// TraceEntry records one rule application during the merge.
type TraceEntry struct {
	RuleID      string            `json:"rule_id"`
	Layer       string            `json:"layer"`
	Code        string            `json:"code"`
	Severity    string            `json:"severity"`
	Specificity int               `json:"specificity"`
	Effect      map[Bag]Status    `json:"effect,omitempty"`
	Conditions  map[string]any    `json:"conditions,omitempty"`
	ReasonCodes []string          `json:"reason_codes,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// EngineResult is the resolver's deterministic output for one item.
type EngineResult struct {
	Canonical  string         `json:"canonical"`
	RouteType  RouteType      `json:"route_type"`
	Decision   Decision       `json:"decision"`
	Conditions map[string]any `json:"conditions,omitempty"`
	Sources    []SourceRef    `json:"sources,omitempty"`
	Trace      []TraceEntry   `json:"trace,omitempty"`
}

// Flags is the failure and attention taxonomy of one preview. Every
// degraded path sets a flag; nothing in the pipeline panics outward.
type Flags struct {
	ValidationError string   `json:"validation_error,omitempty"`
	MissingParams   []string `json:"missing_params,omitempty"`
	LowConfidence   bool     `json:"low_confidence,omitempty"`
	Conflict        bool     `json:"conflict,omitempty"`
	ConflictBags    []Bag    `json:"conflict_bags,omitempty"`
	LLMError        string   `json:"llm_error,omitempty"`
	Override        bool     `json:"override,omitempty"`
	BenignCategory  bool     `json:"benign_category,omitempty"`
	LLMNeedsReview  bool     `json:"llm_needs_review,omitempty"`
}

// Any reports whether any review-relevant flag is raised.
func (f Flags) Any() bool {
	return f.ValidationError != "" || len(f.MissingParams) > 0 ||
		f.LowConfidence || f.Conflict || f.LLMError != "" ||
		f.Override || f.LLMNeedsReview
}

// PreviewState is the terminal state of a preview.
type PreviewState string

const (
	StateComplete    PreviewState = "complete"
	StateNeedsReview PreviewState = "needs_review"
)

// NarrationCard is the rendered explanation of one bag slot.
type NarrationCard struct {
	StatusLabel string `json:"status_label"`
	ShortReason string `json:"short_reason"`
}

// Narration is human-readable explanation text. It is derived from the
// resolved decision and never feeds back into it.
type Narration struct {
	Title       string        `json:"title"`
	CarryOnCard NarrationCard `json:"carry_on_card"`
	CheckedCard NarrationCard `json:"checked_card"`
	Bullets     []string      `json:"bullets"`
	Badges      []string      `json:"badges,omitempty"`
	Footnote    string        `json:"footnote,omitempty"`
	Sources     []string      `json:"sources,omitempty"`
}

// PreviewResult is the full output of one preview run.
type PreviewResult struct {
	ReqID     string        `json:"req_id"`
	State     PreviewState  `json:"state"`
	Label     string        `json:"label"`
	Canonical string        `json:"canonical"`
	Decision  Decision      `json:"decision"`
	Engine    *EngineResult `json:"engine,omitempty"`
	Narration *Narration    `json:"narration,omitempty"`
	Draft     *Draft        `json:"draft,omitempty"`
	Flags     Flags         `json:"flags"`
	Cached    bool          `json:"-"`
}
