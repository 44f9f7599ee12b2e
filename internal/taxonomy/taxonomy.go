// Package taxonomy owns the closed canonical item vocabulary: risk
// categories with their parameter requirements and default verdict
// templates, plus benign categories that short-circuit to allow/allow.
//
// The taxonomy is the single source of truth for three consumers: the
// classifier prompt (the model may only answer with these keys), the schema
// guard (anything else is a validation error), and the resolver baseline
// (default templates seed the merge).
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"cherrypick/internal/logging"
	"cherrypick/internal/types"
)

// Template is a per-bag default verdict for a category.
type Template struct {
	Status types.Status `json:"status"`
	Badges []string     `json:"badges,omitempty"`
}

// Entry is one risk category of the closed taxonomy.
type Entry struct {
	Key      string            `json:"key"`
	Label    string            `json:"label"`
	Group    string            `json:"group,omitempty"`
	Required []types.ParamName `json:"required_params,omitempty"`
	// AnyOf lists params of which at least one must be present. Dry battery
	// families accept either a watt-hour rating or a piece count.
	AnyOf    []types.ParamName `json:"any_of_params,omitempty"`
	Optional []types.ParamName `json:"optional_params,omitempty"`
	CarryOn  Template          `json:"carry_on"`
	Checked  Template          `json:"checked"`
	Synonyms []string          `json:"synonyms,omitempty"`
}

// taxonomyFile is the on-disk override format (taxonomy.json).
type taxonomyFile struct {
	Entries    []Entry  `json:"entries"`
	BenignKeys []string `json:"benign_keys"`
}

// Engine holds the loaded taxonomy. Reads take the read lock; the engine is
// effectively immutable after construction.
type Engine struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	order    []string
	benign   map[string]struct{}
	benOrder []string
	synonyms map[string]string // lowercase synonym -> canonical key
}

// New builds an engine from the built-in defaults.
func New() *Engine {
	e, err := build(DefaultEntries, DefaultBenignKeys)
	if err != nil {
		// The built-in table is validated by tests; a failure here is a
		// programming error, not an operational one.
		panic(fmt.Sprintf("taxonomy: invalid built-in table: %v", err))
	}
	return e
}

// Load builds an engine from taxonomy.json under dir, falling back to the
// built-in defaults when dir is empty or the file does not exist.
func Load(dir string) (*Engine, error) {
	if dir == "" {
		return New(), nil
	}
	path := filepath.Join(dir, "taxonomy.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Taxonomy("no taxonomy.json in %s, using built-in defaults", dir)
			return New(), nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var tf taxonomyFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	e, err := build(tf.Entries, tf.BenignKeys)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.Taxonomy("loaded %d risk keys, %d benign keys from %s",
		len(tf.Entries), len(tf.BenignKeys), path)
	return e, nil
}

func build(entries []Entry, benignKeys []string) (*Engine, error) {
	e := &Engine{
		entries:  make(map[string]Entry, len(entries)),
		benign:   make(map[string]struct{}, len(benignKeys)),
		synonyms: make(map[string]string),
	}

	validParams := make(map[types.ParamName]struct{}, len(types.AllParamNames))
	for _, p := range types.AllParamNames {
		validParams[p] = struct{}{}
	}

	for i, entry := range entries {
		if entry.Key == "" {
			return nil, fmt.Errorf("entry %d: empty key", i)
		}
		if _, dup := e.entries[entry.Key]; dup {
			return nil, fmt.Errorf("duplicate taxonomy key %q", entry.Key)
		}
		if !types.ValidStatus(entry.CarryOn.Status) || !types.ValidStatus(entry.Checked.Status) {
			return nil, fmt.Errorf("key %q: invalid template status", entry.Key)
		}
		all := append([]types.ParamName{}, entry.Required...)
		all = append(all, entry.AnyOf...)
		for _, p := range append(all, entry.Optional...) {
			if _, ok := validParams[p]; !ok {
				return nil, fmt.Errorf("key %q: unknown param %q", entry.Key, p)
			}
		}
		e.entries[entry.Key] = entry
		e.order = append(e.order, entry.Key)
		for _, syn := range entry.Synonyms {
			e.synonyms[strings.ToLower(strings.TrimSpace(syn))] = entry.Key
		}
	}

	for _, k := range benignKeys {
		if _, clash := e.entries[k]; clash {
			return nil, fmt.Errorf("key %q is both risk and benign", k)
		}
		if _, dup := e.benign[k]; dup {
			continue
		}
		e.benign[k] = struct{}{}
		e.benOrder = append(e.benOrder, k)
	}
	if _, ok := e.benign["benign_general"]; !ok {
		return nil, fmt.Errorf("benign_general must be present")
	}

	sort.Strings(e.order)
	sort.Strings(e.benOrder)
	return e, nil
}

// Lookup returns the entry for a risk key.
func (e *Engine) Lookup(key string) (Entry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.entries[key]
	return entry, ok
}

// IsRisk reports whether key is a risk category.
func (e *Engine) IsRisk(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.entries[key]
	return ok
}

// IsBenign reports whether key is a benign category.
func (e *Engine) IsBenign(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.benign[key]
	return ok
}

// IsKnown reports whether key belongs to the closed vocabulary at all.
func (e *Engine) IsKnown(key string) bool {
	return e.IsRisk(key) || e.IsBenign(key)
}

// RiskKeys returns the sorted risk keys.
func (e *Engine) RiskKeys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// BenignKeys returns the sorted benign keys.
func (e *Engine) BenignKeys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.benOrder))
	copy(out, e.benOrder)
	return out
}

// RequiredParams returns the params that must be present before a complete
// verdict can be issued for key. Benign and unknown keys require nothing.
func (e *Engine) RequiredParams(key string) []types.ParamName {
	entry, ok := e.Lookup(key)
	if !ok {
		return nil
	}
	return entry.Required
}

// AnyOfParams returns the alternative-requirement group for key: at least
// one of these must be present. Empty for most categories.
func (e *Engine) AnyOfParams(key string) []types.ParamName {
	entry, ok := e.Lookup(key)
	if !ok {
		return nil
	}
	return entry.AnyOf
}

// DefaultDecision returns the template verdict pair for key. Benign keys
// get allow/allow; unknown keys get the conservative limit/limit pair.
func (e *Engine) DefaultDecision(key string) types.Decision {
	if entry, ok := e.Lookup(key); ok {
		return types.Decision{
			CarryOn: types.VerdictSlot{Status: entry.CarryOn.Status, Badges: append([]string{}, entry.CarryOn.Badges...)},
			Checked: types.VerdictSlot{Status: entry.Checked.Status, Badges: append([]string{}, entry.Checked.Badges...)},
		}
	}
	if e.IsBenign(key) {
		return types.Decision{
			CarryOn: types.VerdictSlot{Status: types.StatusAllow, Badges: []string{}},
			Checked: types.VerdictSlot{Status: types.StatusAllow, Badges: []string{}},
		}
	}
	return types.Decision{
		CarryOn: types.VerdictSlot{Status: types.StatusLimit, Badges: []string{"Manual review"}},
		Checked: types.VerdictSlot{Status: types.StatusLimit, Badges: []string{"Manual review"}},
	}
}

// SynonymCanonical maps a lowercase term to its canonical key, if any.
func (e *Engine) SynonymCanonical(term string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	key, ok := e.synonyms[strings.ToLower(strings.TrimSpace(term))]
	return key, ok
}

// SynonymPairs returns every (synonym, canonical) pair for the embedding
// matcher corpus, ordered by canonical key.
func (e *Engine) SynonymPairs() [][2]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out [][2]string
	for _, key := range e.order {
		for _, syn := range e.entries[key].Synonyms {
			out = append(out, [2]string{syn, key})
		}
	}
	return out
}

// PromptSection renders the taxonomy as a prompt fragment for the
// classifier. Keys are grouped with labels and synonym examples so the model
// never has to guess the vocabulary.
func (e *Engine) PromptSection() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var b strings.Builder
	b.WriteString("## Canonical item categories (closed vocabulary)\n\n")
	b.WriteString("Risk categories (choose the single best match):\n")

	// Stable group ordering: groups in first-appearance order over sorted keys
	grouped := make(map[string][]string)
	var groupOrder []string
	for _, key := range e.order {
		g := e.entries[key].Group
		if g == "" {
			g = "other"
		}
		if _, seen := grouped[g]; !seen {
			groupOrder = append(groupOrder, g)
		}
		grouped[g] = append(grouped[g], key)
	}

	for _, g := range groupOrder {
		fmt.Fprintf(&b, "\n### %s\n", g)
		for _, key := range grouped[g] {
			entry := e.entries[key]
			fmt.Fprintf(&b, "- `%s` (%s)", key, entry.Label)
			if len(entry.Synonyms) > 0 {
				max := len(entry.Synonyms)
				if max > 4 {
					max = 4
				}
				fmt.Fprintf(&b, " e.g. %s", strings.Join(entry.Synonyms[:max], ", "))
			}
			if len(entry.Required) > 0 {
				names := make([]string, len(entry.Required))
				for i, p := range entry.Required {
					names[i] = string(p)
				}
				fmt.Fprintf(&b, " [needs: %s]", strings.Join(names, ", "))
			}
			if len(entry.AnyOf) > 0 {
				names := make([]string, len(entry.AnyOf))
				for i, p := range entry.AnyOf {
					names[i] = string(p)
				}
				fmt.Fprintf(&b, " [needs one of: %s]", strings.Join(names, ", "))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nBenign categories (no transport risk):\n")
	for _, key := range e.benOrder {
		fmt.Fprintf(&b, "- `%s`\n", key)
	}
	b.WriteString("\nIf the item has no transport risk, use `benign_general` ")
	b.WriteString("unless a more specific benign key fits.\n")
	return b.String()
}
