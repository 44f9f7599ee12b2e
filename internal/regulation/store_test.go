package regulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherrypick/internal/types"
)

func writeRules(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

const krFile = `{
  "scope": "country",
  "code": "KR",
  "name": "Korea security",
  "rules": [
    {
      "item_category": "lighter",
      "severity": "warn",
      "constraints": {"max_pieces": 1, "carry_on_allowed": true, "checked_allowed": false}
    },
    {
      "item_category": "knife",
      "severity": "block",
      "constraints": {"carry_on_allowed": false},
      "notes": "No blades through security"
    }
  ]
}`

const intlFile = `{
  "scope": "international",
  "code": "",
  "rules": [
    {
      "item_category": "power_bank",
      "severity": "warn",
      "constraints": {"max_wh": 100, "max_pieces": 2, "checked_allowed": false}
    }
  ]
}`

func TestLoadDirAndFind(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, "country_kr.json", krFile)
	writeRules(t, dir, "international.json", intlFile)

	s := NewStore(nil)
	require.NoError(t, s.LoadDir(dir))

	stats := s.Stats()
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 3, stats.Rules)

	rules := s.Find(ScopeCountry, "KR", "lighter")
	require.Len(t, rules, 1)
	assert.Equal(t, SeverityWarn, rules[0].Severity)
	assert.Equal(t, 1.0, rules[0].Caps["max_pieces"])
	require.NotNil(t, rules[0].CheckedAllowed)
	assert.False(t, *rules[0].CheckedAllowed)

	// International code defaults to INTL
	intl := s.Find(ScopeInternational, "INTL", "power_bank")
	require.Len(t, intl, 1)
	assert.Equal(t, 100.0, intl[0].Caps["max_wh"])

	assert.Empty(t, s.Find(ScopeCountry, "US", "lighter"))
}

func TestLoadDir_UnknownCategoryRejected(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, "country_kr.json", `{
	  "scope": "country", "code": "KR",
	  "rules": [{"item_category": "made_up_thing", "severity": "block"}]
	}`)

	s := NewStore(func(key string) bool { return key == "knife" })
	err := s.LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "made_up_thing")
}

func TestLoadDir_CollisionOnIdentityVector(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, "airline_ke.json", `{
	  "scope": "airline", "code": "KE",
	  "rules": [
	    {"item_category": "power_bank", "severity": "warn", "constraints": {"cabin_class": "prestige", "max_pieces": 2}},
	    {"item_category": "power_bank", "severity": "warn", "constraints": {"cabin_class": "prestige", "max_pieces": 5}}
	  ]
	}`)

	s := NewStore(nil)
	err := s.LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collide")
	assert.Contains(t, err.Error(), "airline_ke.json")
}

func TestLoadDir_DifferentConditionsDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, "airline_ke.json", `{
	  "scope": "airline", "code": "KE",
	  "rules": [
	    {"item_category": "power_bank", "severity": "warn", "constraints": {"cabin_class": "prestige", "max_pieces": 2}},
	    {"item_category": "power_bank", "severity": "warn", "constraints": {"max_pieces": 5}}
	  ]
	}`)

	s := NewStore(nil)
	require.NoError(t, s.LoadDir(dir))
	assert.Len(t, s.Find(ScopeAirline, "KE", "power_bank"), 2)
}

func TestLoadDir_BadFileKeepsOldIndex(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, "country_kr.json", krFile)

	s := NewStore(nil)
	require.NoError(t, s.LoadDir(dir))
	require.Len(t, s.Find(ScopeCountry, "KR", "knife"), 1)

	// Corrupt the file; reload must fail and the old snapshot keeps serving
	writeRules(t, dir, "country_kr.json", `{"scope": "country", "code": "KR", "rules": [`)
	require.Error(t, s.Reload())
	assert.Len(t, s.Find(ScopeCountry, "KR", "knife"), 1)
}

func TestLoadDir_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"bad severity": `{"scope": "country", "code": "KR",
		  "rules": [{"item_category": "knife", "severity": "banhammer"}]}`,
		"unknown constraint": `{"scope": "country", "code": "KR",
		  "rules": [{"item_category": "knife", "severity": "warn", "constraints": {"max_sharpness": 11}}]}`,
		"negative cap": `{"scope": "country", "code": "KR",
		  "rules": [{"item_category": "knife", "severity": "warn", "constraints": {"max_blade_cm": -4}}]}`,
		"bad cabin class": `{"scope": "airline", "code": "KE",
		  "rules": [{"item_category": "knife", "severity": "warn", "constraints": {"cabin_class": "steerage"}}]}`,
		"missing code": `{"scope": "airline",
		  "rules": [{"item_category": "knife", "severity": "warn"}]}`,
		"empty rules": `{"scope": "country", "code": "KR", "rules": []}`,
		"bad scope": `{"scope": "galaxy", "code": "KR",
		  "rules": [{"item_category": "knife", "severity": "warn"}]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeRules(t, dir, "r.json", content)
			s := NewStore(nil)
			assert.Error(t, s.LoadDir(dir))
		})
	}
}

func TestRuleMatchesAndSpecificity(t *testing.T) {
	intl := types.RouteInternational
	prestige := types.CabinPrestige

	r := &Rule{RouteType: &intl, CabinClass: &prestige}
	assert.Equal(t, 2, r.Specificity())
	assert.True(t, r.Matches(types.RouteInternational, types.CabinPrestige, ""))
	assert.False(t, r.Matches(types.RouteDomestic, types.CabinPrestige, ""))
	assert.False(t, r.Matches(types.RouteInternational, types.CabinEconomy, ""))

	wild := &Rule{}
	assert.Equal(t, 0, wild.Specificity())
	assert.True(t, wild.Matches(types.RouteDomestic, types.CabinEconomy, "Y"))
}

func TestDefaultReasonCode(t *testing.T) {
	f := File{Scope: ScopeCountry, Code: "KR"}
	r, err := compile(f, 0, RuleSpec{ItemCategory: "knife", Severity: SeverityBlock})
	require.NoError(t, err)
	assert.Equal(t, "country:KR:knife", r.ReasonCode)

	r, err = compile(f, 1, RuleSpec{
		ItemCategory: "knife",
		Severity:     SeverityBlock,
		Constraints:  map[string]any{"reason_code": "KR-SEC-12"},
	})
	require.NoError(t, err)
	assert.Equal(t, "KR-SEC-12", r.ReasonCode)
}
