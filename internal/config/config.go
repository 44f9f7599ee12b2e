// Package config loads cherrypick configuration from YAML with environment
// overrides. All durations are strings parsed with time.ParseDuration so the
// YAML stays readable ("8s", "15m").
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Narration NarrationConfig `yaml:"narration"`
	Cache     CacheConfig     `yaml:"cache"`
	Data      DataConfig      `yaml:"data"`
	Review    ReviewConfig    `yaml:"review"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LLMConfig configures the classifier model call.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Timeout     string  `yaml:"timeout"`
}

// NarrationConfig configures the narration model call. Narration has a
// tighter deadline than classification; failures fall back to templates.
type NarrationConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	Timeout   string `yaml:"timeout"`
}

// CacheConfig bounds the draft and preview caches.
type CacheConfig struct {
	DraftTTL    string `yaml:"draft_ttl"`
	DraftSize   int    `yaml:"draft_size"`
	PreviewTTL  string `yaml:"preview_ttl"`
	PreviewSize int    `yaml:"preview_size"`
}

// DataConfig points at the taxonomy and regulation data directories.
// Empty paths mean the embedded defaults.
type DataConfig struct {
	TaxonomyDir   string `yaml:"taxonomy_dir"`
	RegulationDir string `yaml:"regulation_dir"`
	AirportsFile  string `yaml:"airports_file"`
	WatchRules    bool   `yaml:"watch_rules"`
}

// ReviewConfig tunes when a preview is held for manual review.
type ReviewConfig struct {
	ConfidenceThreshold float64  `yaml:"confidence_threshold"`
	AlwaysReview        []string `yaml:"always_review"`
}

// LoggingConfig mirrors the logging package settings.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the baseline configuration. Values match the
// operational defaults; a config file and env vars override them.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:       "gemini-2.5-flash",
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
			Temperature: 0,
			MaxTokens:   1024,
			Timeout:     "8s",
		},
		Narration: NarrationConfig{
			Enabled:   true,
			Model:     "gemini-2.5-flash",
			MaxTokens: 512,
			Timeout:   "5s",
		},
		Cache: CacheConfig{
			DraftTTL:    "15m",
			DraftSize:   2048,
			PreviewTTL:  "5m",
			PreviewSize: 1024,
		},
		Data: DataConfig{
			RegulationDir: "data/regulations",
			WatchRules:    false,
		},
		Review: ReviewConfig{
			ConfidenceThreshold: 0.55,
			AlwaysReview:        []string{"weapon_firearm", "ammunition"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file, overlays it on the defaults, and applies
// environment overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variables over the loaded values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("CHERRYPICK_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("CHERRYPICK_DATA_DIR"); v != "" {
		c.Data.TaxonomyDir = v
	}
	if v := os.Getenv("CHERRYPICK_REGULATION_DIR"); v != "" {
		c.Data.RegulationDir = v
	}
}

// Validate checks ranges and duration syntax.
func (c *Config) Validate() error {
	if c.LLM.Temperature < 0 {
		c.LLM.Temperature = 0
	}
	// Classification must stay deterministic; anything above the cap is
	// clamped rather than rejected.
	if c.LLM.Temperature > 0.05 {
		c.LLM.Temperature = 0.05
	}
	if c.Review.ConfidenceThreshold < 0 || c.Review.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold %v out of range [0,1]", c.Review.ConfidenceThreshold)
	}
	for name, d := range map[string]string{
		"llm.timeout":       c.LLM.Timeout,
		"narration.timeout": c.Narration.Timeout,
		"cache.draft_ttl":   c.Cache.DraftTTL,
		"cache.preview_ttl": c.Cache.PreviewTTL,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// duration parses s, falling back to def when empty or invalid.
func duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// LLMTimeout returns the classifier call deadline.
func (c *Config) LLMTimeout() time.Duration {
	return duration(c.LLM.Timeout, 8*time.Second)
}

// NarrationTimeout returns the narration call deadline.
func (c *Config) NarrationTimeout() time.Duration {
	return duration(c.Narration.Timeout, 5*time.Second)
}

// DraftTTL returns the classifier draft cache TTL.
func (c *Config) DraftTTL() time.Duration {
	return duration(c.Cache.DraftTTL, 15*time.Minute)
}

// PreviewTTL returns the preview cache TTL.
func (c *Config) PreviewTTL() time.Duration {
	return duration(c.Cache.PreviewTTL, 5*time.Minute)
}
