package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cherrypick/internal/config"
	"cherrypick/internal/logging"
	"cherrypick/internal/narration"
	"cherrypick/internal/perception"
	"cherrypick/internal/preview"
	"cherrypick/internal/regulation"
	"cherrypick/internal/resolver"
	"cherrypick/internal/taxonomy"
)

var (
	// Global flags
	configPath string
	rulesDir   string
	verbose    bool
	noLLM      bool

	cfg *config.Config
)

// app holds the wired pipeline for one command invocation.
type app struct {
	cfg      *config.Config
	tax      *taxonomy.Engine
	store    *regulation.Store
	resolver *resolver.Resolver
	service  *preview.Service
	watcher  *regulation.Watcher
}

// Close stops background machinery. Safe on a partially built app.
func (a *app) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
}

var rootCmd = &cobra.Command{
	Use:   "cherrypick",
	Short: "cherrypick - can this item fly in your bag?",
	Long: `cherrypick previews whether an item may travel in carry-on or checked
baggage on a given itinerary.

A language model reads the item label and proposes a category; layered
regulation rules (country security, airline policy, international baseline)
then produce the authoritative per-bag verdict. The model never decides.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if rulesDir != "" {
			cfg.Data.RegulationDir = rulesDir
		}
		if err := logging.Initialize("."); err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}
		if verbose || cfg.Logging.DebugMode {
			logging.SetDebugMode(true)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
	},
}

// buildApp wires taxonomy, regulation store, resolver, and the preview
// pipeline from the loaded config.
func buildApp(ctx context.Context) (*app, error) {
	tax, err := taxonomy.Load(cfg.Data.TaxonomyDir)
	if err != nil {
		return nil, err
	}

	store := regulation.NewStore(tax.IsKnown)
	if err := store.LoadDir(cfg.Data.RegulationDir); err != nil {
		return nil, err
	}

	var watcher *regulation.Watcher
	if cfg.Data.WatchRules {
		watcher, err = regulation.NewWatcher(cfg.Data.RegulationDir, store)
		if err != nil {
			return nil, err
		}
		if err := watcher.Start(ctx); err != nil {
			return nil, err
		}
	}

	airports, err := resolver.LoadAirportIndex(cfg.Data.AirportsFile)
	if err != nil {
		return nil, err
	}
	res := resolver.New(store, tax, airports)

	// With no API key (or --no-llm) the client fails cleanly and previews
	// degrade to the conservative manual-review path.
	apiKey := cfg.LLM.APIKey
	if noLLM {
		apiKey = ""
	}
	client := perception.NewGeminiClient(perception.GeminiConfig{
		APIKey:          apiKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		MaxOutputTokens: cfg.LLM.MaxTokens,
		Timeout:         cfg.LLMTimeout(),
	})

	var matcher *perception.SynonymMatcher
	if apiKey != "" {
		matcher, err = perception.NewSynonymMatcher(ctx, apiKey, tax)
		if err != nil {
			logging.BootError("synonym matcher unavailable: %v", err)
		}
	}

	classifier := perception.NewClassifier(client, tax, matcher, perception.ClassifierConfig{
		DraftTTL:  cfg.DraftTTL(),
		DraftSize: cfg.Cache.DraftSize,
	})

	var narrator preview.Narrator
	if cfg.Narration.Enabled {
		// Narration reuses the classifier client; with no model wired it
		// still produces deterministic template text.
		narrator = narration.New(client, narration.Config{Timeout: cfg.NarrationTimeout()})
	}

	svc := preview.NewService(classifier, res, tax, narrator, preview.Config{
		PreviewTTL:          cfg.PreviewTTL(),
		PreviewSize:         cfg.Cache.PreviewSize,
		ConfidenceThreshold: cfg.Review.ConfidenceThreshold,
		AlwaysReview:        cfg.Review.AlwaysReview,
	})

	logging.Boot("cherrypick ready: %d rules, model=%s", store.Stats().Rules, cfg.LLM.Model)
	return &app{cfg: cfg, tax: tax, store: store, resolver: res, service: svc, watcher: watcher}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "cherrypick.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&rulesDir, "rules-dir", "", "regulation directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noLLM, "no-llm", false, "skip the model, classify nothing (rules tooling only)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
