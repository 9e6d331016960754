package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/withholding/internal/calculation"
	"github.com/rgehrsitz/withholding/internal/config"
	"github.com/rgehrsitz/withholding/internal/tui"
)

func rulesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate withholding rule tables",
	}
	cmd.AddCommand(rulesValidateCmd(), rulesShowCmd(opts), rulesBrowseCmd(opts))
	return cmd
}

func rulesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [rules-file]",
		Short: "Validate a rule table and derive its cumulative bracket bases",
		Long: `Validate a rule table. Brackets must start at 0, be contiguous and
ascending, and only the last may be open-ended. Supplied cumulative bases
must match the derived values. With no file the embedded table is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			rules, err := config.NewRulesLoader().Load(path)
			if err != nil {
				return err
			}
			if path == "" {
				path = "embedded rules"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule table %s (version %s) is valid: %d jurisdictions, %d federal brackets\n",
				path, rules.Metadata.Version, len(rules.Jurisdictions), len(rules.Federal.Brackets))
			return nil
		},
	}
}

func rulesShowCmd(opts *rootOptions) *cobra.Command {
	var jurisdiction string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the normalised rule table, or one jurisdiction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}

			if jurisdiction == "" {
				data, err := config.MarshalRules(a.rules)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			code := strings.ToUpper(strings.TrimSpace(jurisdiction))
			rule, ok := a.rules.Jurisdiction(code)
			if !ok {
				if suggestion, found := calculation.SuggestJurisdiction(code, a.rules.Codes()); found {
					return fmt.Errorf("unknown jurisdiction %s (did you mean %s?)", code, suggestion)
				}
				return fmt.Errorf("unknown jurisdiction %s", code)
			}
			data, err := yaml.Marshal(rule)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&jurisdiction, "jurisdiction", "j", "", "show only this jurisdiction code")
	return cmd
}

func rulesBrowseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse jurisdictions and try quick calculations in a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(opts.configFile)
			if err != nil {
				return err
			}
			path := settings.Rules.Path
			if opts.rulesPath != "" {
				path = opts.rulesPath
			}

			p := tea.NewProgram(tui.NewModel(path), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}
}
