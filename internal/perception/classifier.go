package perception

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"cherrypick/internal/cache"
	"cherrypick/internal/logging"
	"cherrypick/internal/taxonomy"
	"cherrypick/internal/types"
)

// ClassifierConfig tunes the classification pipeline.
type ClassifierConfig struct {
	DraftTTL  time.Duration
	DraftSize int
	// SynonymHintCount caps how many matcher hints go into the prompt.
	SynonymHintCount int
}

// Classifier runs the label -> draft pipeline: prompt build, one model
// call, schema validation. Validated drafts are cached by request
// fingerprint so identical labels on the same itinerary cost one call.
type Classifier struct {
	client  LLMClient
	tax     *taxonomy.Engine
	matcher *SynonymMatcher
	cache   *cache.TTLCache[*types.Draft]
	cfg     ClassifierConfig
}

// NewClassifier wires a classifier. matcher may be nil.
func NewClassifier(client LLMClient, tax *taxonomy.Engine, matcher *SynonymMatcher, cfg ClassifierConfig) *Classifier {
	if cfg.DraftTTL <= 0 {
		cfg.DraftTTL = 15 * time.Minute
	}
	if cfg.DraftSize <= 0 {
		cfg.DraftSize = 2048
	}
	if cfg.SynonymHintCount <= 0 {
		cfg.SynonymHintCount = 3
	}
	return &Classifier{
		client:  client,
		tax:     tax,
		matcher: matcher,
		cache:   cache.New[*types.Draft](cfg.DraftTTL, cfg.DraftSize),
		cfg:     cfg,
	}
}

// Fingerprint is the draft cache key: a sha256 over the normalized label
// and every classification-relevant request field. Two requests with the
// same fingerprint must yield the same draft within the TTL.
func Fingerprint(req types.PreviewRequest) string {
	hints := ExtractHints(req.Label)
	payload := struct {
		Label     string           `json:"label"`
		Locale    string           `json:"locale"`
		Itinerary types.Itinerary  `json:"itinerary"`
		Segments  []types.Segment  `json:"segments"`
		Params    types.ItemParams `json:"params"`
		Hints     types.ItemParams `json:"hints"`
		DutyFree  types.DutyFree   `json:"duty_free"`
	}{
		Label:     NormalizeLabel(req.Label),
		Locale:    req.Locale,
		Itinerary: req.Itinerary,
		Segments:  req.Segments,
		Params:    req.ItemParams,
		Hints:     hints,
		DutyFree:  req.DutyFree,
	}
	blob, _ := json.Marshal(payload)
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

// Classify produces a validated draft for the request. Exactly one model
// attempt is made per call; failures return an error rather than retrying.
// ErrLLMUnavailable means the model never answered; a *ValidationError
// means it answered garbage.
func (c *Classifier) Classify(ctx context.Context, req types.PreviewRequest) (*types.Draft, error) {
	if req.Label == "" {
		return nil, &ValidationError{Field: "label", Reason: "empty"}
	}

	fp := Fingerprint(req)
	if draft, ok := c.cache.Get(fp); ok {
		logging.CacheDebug("draft cache hit for %s", fp[:12])
		return draft, nil
	}

	timer := logging.StartTimer(logging.CategoryPerception, "classify "+fp[:12])
	defer timer.StopWithThreshold(2 * time.Second)

	hints := ExtractHints(req.Label)
	var synHints []SynonymHint
	if c.matcher != nil {
		synHints = c.matcher.Hints(ctx, req.Label, c.cfg.SynonymHintCount)
	}

	prompt := BuildClassifierPrompt(req, hints, synHints, c.tax)

	raw, modelInfo, err := c.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("classify %q: %w", NormalizeLabel(req.Label), err)
	}

	draft, err := ValidateDraft(raw, req.Label, c.tax)
	if err != nil {
		logging.PerceptionWarn("draft rejected for %s: %v", fp[:12], err)
		return nil, err
	}
	draft.ModelInfo = modelInfo

	c.cache.Set(fp, draft)
	logging.Perception("classified %q -> %s (confidence %.2f)",
		NormalizeLabel(req.Label), draft.Canonical, draft.Signals.Confidence)
	return draft, nil
}

// CacheLen reports the live draft cache size (tests and stats).
func (c *Classifier) CacheLen() int { return c.cache.Len() }
