package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cherrypick/internal/logging"
	"cherrypick/internal/regulation"
	"cherrypick/internal/taxonomy"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate regulation files",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Load a regulation directory and report errors",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Data.RegulationDir
		if len(args) == 1 {
			dir = args[0]
		}

		tax, err := taxonomy.Load(cfg.Data.TaxonomyDir)
		if err != nil {
			return err
		}
		store := regulation.NewStore(tax.IsKnown)
		if err := store.LoadDir(dir); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		stats := store.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d rules in %d files (%s)\n", stats.Rules, stats.Files, dir)
		return nil
	},
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <scope> <code>",
	Short: "Show the compiled rules of one scope+code",
	Example: `  cherrypick rules show airline KE
  cherrypick rules show international INTL`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope := regulation.Scope(args[0])
		if _, ok := regulation.LayerPriority[scope]; !ok {
			return fmt.Errorf("unknown scope %q (country|airline|international)", args[0])
		}
		code := strings.ToUpper(args[1])

		tax, err := taxonomy.Load(cfg.Data.TaxonomyDir)
		if err != nil {
			return err
		}
		store := regulation.NewStore(tax.IsKnown)
		if err := store.LoadDir(cfg.Data.RegulationDir); err != nil {
			return err
		}

		rules := store.RulesFor(scope, code)
		if len(rules) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no rules for %s/%s\n", scope, code)
			return nil
		}
		for _, r := range rules {
			fmt.Fprintf(cmd.OutOrStdout(), "%-45s %-5s", r.ID, r.Severity)
			var parts []string
			for k, v := range r.Caps {
				parts = append(parts, fmt.Sprintf("%s=%g", k, v))
			}
			for k := range r.Bools {
				parts = append(parts, k)
			}
			if r.CabinClass != nil {
				parts = append(parts, "cabin="+string(*r.CabinClass))
			}
			if r.RouteType != nil {
				parts = append(parts, "route="+string(*r.RouteType))
			}
			fmt.Fprintf(cmd.OutOrStdout(), " %s\n", strings.Join(parts, " "))
		}
		return nil
	},
}

var rulesWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the regulation directory and hot-reload on change",
	Long: `Watches the regulation directory and reloads the rule index when files
change. A broken edit keeps the previous index serving. SIGHUP forces a
reload; Ctrl-C exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tax, err := taxonomy.Load(cfg.Data.TaxonomyDir)
		if err != nil {
			return err
		}
		store := regulation.NewStore(tax.IsKnown)
		if err := store.LoadDir(cfg.Data.RegulationDir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "watching %s (%d rules)\n", cfg.Data.RegulationDir, store.Stats().Rules)

		watcher, err := regulation.NewWatcher(cfg.Data.RegulationDir, store)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()

		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)

		for {
			select {
			case <-ctx.Done():
				fmt.Fprintf(cmd.OutOrStdout(), "stopped after %d reloads\n", watcher.Reloads())
				return nil
			case <-hup:
				if err := store.Reload(); err != nil {
					logging.RegulationError("manual reload failed: %v", err)
					fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %v\n", err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reloaded: %d rules\n", store.Stats().Rules)
			}
		}
	},
}

func init() {
	rulesCmd.AddCommand(rulesValidateCmd, rulesShowCmd, rulesWatchCmd)
	rootCmd.AddCommand(rulesCmd)
}
