// Package perception turns free-text item labels into validated drafts: an
// LLM proposes a canonical category and per-bag verdicts, a schema guard
// bounds the payload against the closed taxonomy, and a parameter guard
// checks the numeric requirements. Nothing in this package is authoritative;
// the resolver owns the final decision.
package perception

import (
	"context"
	"errors"

	"cherrypick/internal/types"
)

// Sentinel errors of the classification path.
var (
	// ErrLLMUnavailable covers timeouts, transport failures, and an open
	// circuit breaker. The orchestrator maps it to the llm_error flag.
	ErrLLMUnavailable = errors.New("llm unavailable")

	// ErrEmptyCompletion means the model returned no usable text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// LLMClient is the minimal completion surface the classifier and the
// narrator need. Implementations must honor the context deadline and make
// exactly one upstream attempt per call; retry policy belongs to callers.
type LLMClient interface {
	// GenerateJSON sends a prompt expecting a strict-JSON reply and
	// returns the raw completion text plus the model identity used.
	GenerateJSON(ctx context.Context, prompt string) (string, types.ModelInfo, error)
}
