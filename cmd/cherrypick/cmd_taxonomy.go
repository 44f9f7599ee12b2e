package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cherrypick/internal/taxonomy"
	"cherrypick/internal/types"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect the item category vocabulary",
}

var taxonomyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every canonical category with its template verdicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		tax, err := taxonomy.Load(cfg.Data.TaxonomyDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, key := range tax.RiskKeys() {
			entry, _ := tax.Lookup(key)
			line := fmt.Sprintf("%-28s carry=%-5s checked=%-5s",
				key, entry.CarryOn.Status, entry.Checked.Status)
			if params := tax.RequiredParams(key); len(params) > 0 {
				names := make([]string, len(params))
				for i, p := range params {
					names[i] = string(p)
				}
				line += "  needs: " + strings.Join(names, ", ")
			}
			if params := tax.AnyOfParams(key); len(params) > 0 {
				line += "  needs one of: " + paramList(params)
			}
			fmt.Fprintln(out, line)
		}

		fmt.Fprintln(out, "\nbenign:")
		fmt.Fprintf(out, "  %s\n", strings.Join(tax.BenignKeys(), ", "))
		return nil
	},
}

var taxonomyShowCmd = &cobra.Command{
	Use:   "show <category>",
	Short: "Show one category in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tax, err := taxonomy.Load(cfg.Data.TaxonomyDir)
		if err != nil {
			return err
		}

		key := args[0]
		out := cmd.OutOrStdout()
		entry, ok := tax.Lookup(key)
		if !ok {
			if tax.IsBenign(key) {
				fmt.Fprintf(out, "%s: benign (allow/allow)\n", key)
				return nil
			}
			return fmt.Errorf("unknown category %q", key)
		}

		fmt.Fprintf(out, "%s (%s, group %s)\n", entry.Key, entry.Label, entry.Group)
		printSlot(out, "carry-on", entry.CarryOn)
		printSlot(out, "checked", entry.Checked)
		if len(entry.Required) > 0 {
			fmt.Fprintf(out, "  required params: %s\n", paramList(entry.Required))
		}
		if len(entry.AnyOf) > 0 {
			fmt.Fprintf(out, "  one of: %s\n", paramList(entry.AnyOf))
		}
		if len(entry.Optional) > 0 {
			fmt.Fprintf(out, "  optional params: %s\n", paramList(entry.Optional))
		}
		if len(entry.Synonyms) > 0 {
			fmt.Fprintf(out, "  synonyms: %s\n", strings.Join(entry.Synonyms, ", "))
		}
		return nil
	},
}

func printSlot(out io.Writer, name string, tmpl taxonomy.Template) {
	line := fmt.Sprintf("  %-9s %s", name, tmpl.Status)
	if len(tmpl.Badges) > 0 {
		line += "  [" + strings.Join(tmpl.Badges, ", ") + "]"
	}
	fmt.Fprintln(out, line)
}

func paramList(params []types.ParamName) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func init() {
	taxonomyCmd.AddCommand(taxonomyListCmd, taxonomyShowCmd)
	rootCmd.AddCommand(taxonomyCmd)
}
