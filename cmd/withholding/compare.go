package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/withholding/internal/calculation"
	"github.com/rgehrsitz/withholding/internal/compare"
	"github.com/rgehrsitz/withholding/internal/config"
	"github.com/rgehrsitz/withholding/internal/domain"
)

func compareCmd(opts *rootOptions) *cobra.Command {
	var (
		alternatives []string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "compare [request-file]",
		Short: "Compare withholding under alternative rule tables",
		Long: `Run each request against the current rule table and one or more
alternative tables, and report how every figure changes. Nothing is audited.

Examples:
  withholding compare request.json --alt rules-2025.yaml
  withholding compare request.json --alt a.yaml --alt b.yaml --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			requests, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			loader := config.NewRulesLoader()
			alts := make([]compare.RuleSet, 0, len(alternatives))
			for _, path := range alternatives {
				rules, err := loader.LoadFromFile(path)
				if err != nil {
					return err
				}
				alts = append(alts, compare.RuleSet{Name: ruleSetName(path, rules), Rules: rules})
			}
			base := compare.RuleSet{Name: ruleSetName(a.settings.Rules.Path, a.rules), Rules: a.rules}

			engine := compare.NewCompareEngine(
				calculation.WithLogger(a.log.Sugar()),
				calculation.WithStrictJurisdictions(a.settings.Engine.StrictJurisdictions),
			)
			for _, req := range requests {
				set, err := engine.Compare(cmd.Context(), req, base, alts)
				if err != nil {
					return fmt.Errorf("employee %s: %w", req.EmployeeID, err)
				}
				out, err := formatComparison(set, format)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&alternatives, "alt", nil, "alternative rule table YAML (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json, csv")
	_ = cmd.MarkFlagRequired("alt")
	return cmd
}

func formatComparison(set *compare.ComparisonSet, format string) (string, error) {
	switch format {
	case "table":
		return (&compare.TableFormatter{}).Format(set), nil
	case "json":
		return (&compare.JSONFormatter{Pretty: true}).Format(set)
	case "csv":
		return (&compare.CSVFormatter{}).Format(set)
	}
	return "", fmt.Errorf("unsupported format %q (available: table, json, csv)", format)
}

func ruleSetName(path string, rules *domain.RuleTable) string {
	if path == "" {
		return "embedded " + rules.Metadata.Version
	}
	return filepath.Base(path)
}
