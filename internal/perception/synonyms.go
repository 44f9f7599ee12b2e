package perception

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"google.golang.org/genai"

	"cherrypick/internal/logging"
	"cherrypick/internal/taxonomy"
)

// SynonymHint is one similarity-ranked canonical suggestion for a label.
// Hints are advisory prompt material; they never bypass the guard.
type SynonymHint struct {
	Term       string
	Canonical  string
	Similarity float64
}

// SynonymMatcher scores item labels against the taxonomy synonym corpus
// using Gemini embeddings. Without an API key the matcher is disabled and
// every lookup degrades to exact synonym matches only.
type SynonymMatcher struct {
	client *genai.Client
	model  string

	mu      sync.RWMutex
	corpus  []corpusEntry
	tax     *taxonomy.Engine
	primed  bool
}

type corpusEntry struct {
	term      string
	canonical string
	vector    []float32
}

// NewSynonymMatcher builds a matcher over the taxonomy synonyms. An empty
// apiKey yields a working matcher with embeddings disabled.
func NewSynonymMatcher(ctx context.Context, apiKey string, tax *taxonomy.Engine) (*SynonymMatcher, error) {
	m := &SynonymMatcher{
		model: "gemini-embedding-001",
		tax:   tax,
	}
	if apiKey == "" {
		logging.Taxonomy("synonym matcher: no API key, embedding similarity disabled")
		return m, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	m.client = client
	return m, nil
}

// Prime embeds the synonym corpus. Called lazily on first lookup; safe to
// call at boot to front-load the cost. Failure leaves the matcher in
// degraded (exact-match) mode.
func (m *SynonymMatcher) Prime(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.primed || m.client == nil {
		return nil
	}

	pairs := m.tax.SynonymPairs()
	if len(pairs) == 0 {
		m.primed = true
		return nil
	}

	timer := logging.StartTimer(logging.CategoryTaxonomy, "synonym corpus embedding")
	defer timer.Stop()

	contents := make([]*genai.Content, len(pairs))
	for i, p := range pairs {
		contents[i] = genai.NewContentFromText(p[0], genai.RoleUser)
	}

	result, err := m.client.Models.EmbedContent(ctx, m.model, contents,
		&genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"})
	if err != nil {
		return fmt.Errorf("embed synonym corpus: %w", err)
	}
	if len(result.Embeddings) != len(pairs) {
		return fmt.Errorf("embed synonym corpus: got %d embeddings for %d terms", len(result.Embeddings), len(pairs))
	}

	corpus := make([]corpusEntry, len(pairs))
	for i, p := range pairs {
		corpus[i] = corpusEntry{term: p[0], canonical: p[1], vector: result.Embeddings[i].Values}
	}
	m.corpus = corpus
	m.primed = true
	logging.Taxonomy("synonym matcher primed with %d terms", len(corpus))
	return nil
}

// Hints returns up to topK canonical suggestions for label. Exact synonym
// hits come first with similarity 1.0; embedding similarity fills the rest.
// Errors degrade to whatever exact matching found.
func (m *SynonymMatcher) Hints(ctx context.Context, label string, topK int) []SynonymHint {
	if topK <= 0 {
		topK = 3
	}
	norm := NormalizeLabel(label)

	var hints []SynonymHint
	if key, ok := m.tax.SynonymCanonical(norm); ok {
		hints = append(hints, SynonymHint{Term: norm, Canonical: key, Similarity: 1.0})
	}

	if m.client == nil {
		return hints
	}
	if err := m.Prime(ctx); err != nil {
		logging.TaxonomyWarn("synonym matcher prime failed, degrading to exact matches: %v", err)
		return hints
	}

	query, err := m.embedOne(ctx, norm)
	if err != nil {
		logging.TaxonomyWarn("synonym matcher query embed failed: %v", err)
		return hints
	}

	m.mu.RLock()
	scored := make([]SynonymHint, 0, len(m.corpus))
	for _, entry := range m.corpus {
		sim := cosineSimilarity(query, entry.vector)
		scored = append(scored, SynonymHint{Term: entry.term, Canonical: entry.canonical, Similarity: sim})
	}
	m.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })

	seen := make(map[string]struct{})
	for _, h := range hints {
		seen[h.Canonical] = struct{}{}
	}
	for _, h := range scored {
		if len(hints) >= topK {
			break
		}
		if h.Similarity < 0.5 {
			break // below this the corpus has nothing meaningful
		}
		if _, dup := seen[h.Canonical]; dup {
			continue
		}
		seen[h.Canonical] = struct{}{}
		hints = append(hints, h)
	}
	return hints
}

func (m *SynonymMatcher) embedOne(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	result, err := m.client.Models.EmbedContent(ctx, m.model, contents,
		&genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"})
	if err != nil {
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return result.Embeddings[0].Values, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
