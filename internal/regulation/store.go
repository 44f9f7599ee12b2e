package regulation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"cherrypick/internal/logging"
)

// ruleKey addresses one index bucket.
type ruleKey struct {
	Scope    Scope
	Code     string
	Category string
}

type scopeCode struct {
	Scope Scope
	Code  string
}

// index is an immutable snapshot of the compiled rule set. Reloads build a
// fresh index and swap the pointer; readers never see a partial state.
type index struct {
	byKey       map[ruleKey][]*Rule
	byScopeCode map[scopeCode][]*Rule
	files       int
	rules       int
	loadedAt    time.Time
}

func emptyIndex() *index {
	return &index{
		byKey:       make(map[ruleKey][]*Rule),
		byScopeCode: make(map[scopeCode][]*Rule),
		loadedAt:    time.Now(),
	}
}

// Stats summarizes the live index for operators.
type Stats struct {
	Files    int
	Rules    int
	LoadedAt time.Time
}

// Store serves compiled regulation rules. Lookups hit an atomically swapped
// immutable index, so queries in flight during a reload keep their snapshot.
type Store struct {
	known func(string) bool // item_category validity, wired to the taxonomy
	dir   string
	idx   atomic.Pointer[index]
}

// NewStore returns an empty store. known validates item categories against
// the closed taxonomy; nil accepts everything (tests only).
func NewStore(known func(string) bool) *Store {
	s := &Store{known: known}
	s.idx.Store(emptyIndex())
	return s
}

// LoadDir compiles every *.json file under dir into a fresh index and swaps
// it in. On any error the previous index keeps serving.
func (s *Store) LoadDir(dir string) error {
	timer := logging.StartTimer(logging.CategoryRegulation, "regulation load")
	defer timer.Stop()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read regulation dir %s: %w", dir, err)
	}

	var paths []string
	for _, ent := range entries {
		if ent.IsDir() || filepath.Ext(ent.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(dir, ent.Name()))
	}
	sort.Strings(paths)

	next := emptyIndex()
	seenFile := make(map[scopeCode]string)

	for _, path := range paths {
		f, rules, err := loadFile(path)
		if err != nil {
			return err
		}

		sc := scopeCode{f.Scope, rules[0].Code}
		if prev, dup := seenFile[sc]; dup {
			return fmt.Errorf("%s: scope %s code %s already defined in %s", path, f.Scope, rules[0].Code, prev)
		}
		seenFile[sc] = path

		if s.known != nil {
			for i, r := range rules {
				if !s.known(r.ItemCategory) {
					return fmt.Errorf("%s: rule %d: unknown item_category %q", path, i, r.ItemCategory)
				}
			}
		}

		// Full-identity collision check within the file
		seen := make(map[string]int)
		for i, r := range rules {
			key := r.conditionKey()
			if j, dup := seen[key]; dup {
				return fmt.Errorf("%s: rules %d and %d collide on %s (same category and conditions)", path, j, i, key)
			}
			seen[key] = i
		}

		for _, r := range rules {
			k := ruleKey{r.Scope, r.Code, r.ItemCategory}
			next.byKey[k] = append(next.byKey[k], r)
			next.byScopeCode[sc] = append(next.byScopeCode[sc], r)
			next.rules++
		}
		next.files++
	}

	s.dir = dir
	s.idx.Store(next)
	logging.Regulation("loaded %d rules from %d files in %s", next.rules, next.files, dir)
	return nil
}

// loadFile parses and compiles one regulation file.
func loadFile(path string) (File, []*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, nil, fmt.Errorf("read %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, ok := LayerPriority[f.Scope]; !ok {
		return File{}, nil, fmt.Errorf("%s: invalid scope %q", path, f.Scope)
	}
	if f.Scope != ScopeInternational && f.Code == "" {
		return File{}, nil, fmt.Errorf("%s: scope %s requires a code", path, f.Scope)
	}
	if len(f.Rules) == 0 {
		return File{}, nil, fmt.Errorf("%s: no rules", path)
	}

	rules := make([]*Rule, 0, len(f.Rules))
	for i, spec := range f.Rules {
		r, err := compile(f, i, spec)
		if err != nil {
			return File{}, nil, fmt.Errorf("%s: %w", path, err)
		}
		rules = append(rules, r)
	}
	return f, rules, nil
}

// Reload rebuilds the index from the last loaded directory.
func (s *Store) Reload() error {
	if s.dir == "" {
		return fmt.Errorf("no regulation directory loaded yet")
	}
	return s.LoadDir(s.dir)
}

// Find returns the rules for (scope, code, category). The returned slice is
// shared with the index and must not be mutated.
func (s *Store) Find(scope Scope, code, category string) []*Rule {
	return s.idx.Load().byKey[ruleKey{scope, code, category}]
}

// RulesFor returns every rule of one scope+code, for operator inspection.
func (s *Store) RulesFor(scope Scope, code string) []*Rule {
	return s.idx.Load().byScopeCode[scopeCode{scope, code}]
}

// Stats reports the live index size and load time.
func (s *Store) Stats() Stats {
	idx := s.idx.Load()
	return Stats{Files: idx.files, Rules: idx.rules, LoadedAt: idx.loadedAt}
}
