// Package preview orchestrates one advisory run: classify the label, merge
// the layered rules, detect conflicts, raise review flags, and narrate the
// outcome. Every degraded path produces a usable result with a flag; the
// pipeline never returns a bare error for model trouble.
package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"cherrypick/internal/cache"
	"cherrypick/internal/logging"
	"cherrypick/internal/perception"
	"cherrypick/internal/resolver"
	"cherrypick/internal/taxonomy"
	"cherrypick/internal/types"
)

// Classifier produces a validated draft for a request.
type Classifier interface {
	Classify(ctx context.Context, req types.PreviewRequest) (*types.Draft, error)
}

// Narrator renders explanation text for a finished result. Implementations
// must not alter the decision.
type Narrator interface {
	Narrate(ctx context.Context, res *types.PreviewResult) *types.Narration
}

// Config tunes the orchestrator.
type Config struct {
	PreviewTTL          time.Duration
	PreviewSize         int
	ConfidenceThreshold float64
	// AlwaysReview lists categories that go to a human regardless of how
	// confident the model was.
	AlwaysReview []string
}

// Service runs the preview pipeline.
type Service struct {
	classifier Classifier
	resolver   *resolver.Resolver
	tax        *taxonomy.Engine
	narrator   Narrator // nil disables narration
	cache      *cache.TTLCache[*types.PreviewResult]
	group      singleflight.Group
	cfg        Config

	alwaysReview map[string]struct{}
}

func NewService(classifier Classifier, res *resolver.Resolver, tax *taxonomy.Engine, narrator Narrator, cfg Config) *Service {
	if cfg.PreviewTTL <= 0 {
		cfg.PreviewTTL = 5 * time.Minute
	}
	if cfg.PreviewSize <= 0 {
		cfg.PreviewSize = 1024
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 0.55
	}
	always := make(map[string]struct{}, len(cfg.AlwaysReview))
	for _, key := range cfg.AlwaysReview {
		always[key] = struct{}{}
	}
	return &Service{
		classifier:   classifier,
		resolver:     res,
		tax:          tax,
		narrator:     narrator,
		cache:        cache.New[*types.PreviewResult](cfg.PreviewTTL, cfg.PreviewSize),
		cfg:          cfg,
		alwaysReview: always,
	}
}

// Preview runs one request through the pipeline. Identical in-flight
// requests share a single run; completed results are served from cache
// under a fresh request id.
func (s *Service) Preview(ctx context.Context, req types.PreviewRequest) (*types.PreviewResult, error) {
	reqID := req.ReqID
	if reqID == "" {
		reqID = uuid.NewString()
	}
	rlog := logging.WithRequestID(logging.CategoryPreview, reqID)

	if req.Label == "" {
		return nil, fmt.Errorf("preview: empty label")
	}

	fp := perception.Fingerprint(req)
	if hit, ok := s.cache.Get(fp); ok {
		rlog.Debug("preview cache hit for %s", fp[:12])
		out := *hit
		out.ReqID = reqID
		out.Cached = true
		return &out, nil
	}

	ch := s.group.DoChan(fp, func() (any, error) {
		return s.run(ctx, reqID, fp, req)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			return nil, out.Err
		}
		res := out.Val.(*types.PreviewResult)
		if out.Shared {
			shared := *res
			shared.ReqID = reqID
			return &shared, nil
		}
		return res, nil
	}
}

// run is the single-flight body: one classification attempt, one merge.
func (s *Service) run(ctx context.Context, reqID, fp string, req types.PreviewRequest) (*types.PreviewResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rlog := logging.WithRequestID(logging.CategoryPreview, reqID)
	timer := logging.StartTimer(logging.CategoryPreview, "preview "+fp[:12])
	defer timer.Stop()

	res := &types.PreviewResult{ReqID: reqID, Label: req.Label}

	draft, err := s.classifier.Classify(ctx, req)
	var verr *perception.ValidationError
	switch {
	case err == nil:
		res.Draft = draft
	case errors.As(err, &verr):
		rlog.Warn("draft rejected: %v", verr)
		res.Flags.ValidationError = verr.Error()
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		rlog.Warn("classifier unavailable: %v", err)
		res.Flags.LLMError = err.Error()
	}

	if draft == nil {
		// No trusted category: fall back to the conservative template and
		// send the item to a human.
		res.Decision = s.tax.DefaultDecision("")
		s.finish(ctx, res)
		return res, nil
	}

	res.Canonical = draft.Canonical
	res.Flags.BenignCategory = s.tax.IsBenign(draft.Canonical)
	res.Flags.LLMNeedsReview = draft.NeedsReview
	if draft.Signals.Confidence < s.cfg.ConfidenceThreshold {
		res.Flags.LowConfidence = true
	}
	if _, always := s.alwaysReview[draft.Canonical]; always {
		res.Flags.Override = true
	}

	params := perception.EffectiveParams(req.ItemParams, req.Label, draft)
	res.Flags.MissingParams = perception.MissingParams(draft.Canonical, params, s.tax)

	engine, err := s.resolver.Resolve(ctx, resolver.Query{
		Canonical: draft.Canonical,
		Itinerary: req.Itinerary,
		Segments:  req.Segments,
		Params:    params,
		DutyFree:  req.DutyFree,
	})
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", reqID, err)
	}
	res.Engine = engine
	res.Decision = engine.Decision

	if bags := conflictBags(draft, engine.Decision); len(bags) > 0 {
		rlog.Debug("model draft softer than merged decision for %v", bags)
		res.Flags.Conflict = true
		res.Flags.ConflictBags = bags
	}

	s.finish(ctx, res)
	if res.State == types.StateComplete {
		s.cache.Set(fp, res)
	}
	rlog.Info("preview %s: %s (carry=%s checked=%s)",
		res.Canonical, res.State, res.Decision.CarryOn.Status, res.Decision.Checked.Status)
	return res, nil
}

// finish derives the terminal state and renders narration. A cancelled
// context after resolution still yields the decision; only the narration
// step is skipped.
func (s *Service) finish(ctx context.Context, res *types.PreviewResult) {
	res.State = deriveState(res)
	if s.narrator == nil {
		return
	}
	if ctx.Err() != nil {
		logging.PreviewDebug("skipping narration for %s: %v", res.ReqID, ctx.Err())
		return
	}
	res.Narration = s.narrator.Narrate(ctx, res)
}

// deriveState applies the completion rule: a preview is complete only when
// nothing flagged attention and neither bag ended at deny. Any deny goes to
// review so a human confirms before the traveler repacks or discards.
func deriveState(res *types.PreviewResult) types.PreviewState {
	if res.Flags.Any() {
		return types.StateNeedsReview
	}
	if res.Decision.CarryOn.Status == types.StatusDeny || res.Decision.Checked.Status == types.StatusDeny {
		return types.StateNeedsReview
	}
	return types.StateComplete
}

// CacheLen reports the live preview cache size.
func (s *Service) CacheLen() int { return s.cache.Len() }
