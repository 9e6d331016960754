package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/withholding/internal/calculation"
	"github.com/rgehrsitz/withholding/internal/config"
	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/rgehrsitz/withholding/internal/output"
)

func calculateCmd(opts *rootOptions) *cobra.Command {
	var (
		format      string
		noAudit     bool
		save        bool
		assumptions bool
		performedBy string
	)

	cmd := &cobra.Command{
		Use:   "calculate [request-file]",
		Short: "Calculate withholding for one or more requests",
		Long: `Calculate withholding for the requests in a JSON or YAML file. Each
calculation is written to the configured audit store unless --no-audit is
given.

Examples:
  withholding calculate request.json
  withholding calculate payroll.yaml --format csv --save
  withholding calculate request.json --no-audit --rules rules-2025.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.GetFormatterByName(format)
			if formatter == nil {
				return fmt.Errorf("unsupported format %q (available: %s)", format, strings.Join(output.AvailableFormats(), ", "))
			}
			if format == "console" && assumptions {
				formatter = output.ConsoleFormatter{ShowAssumptions: true}
			}

			a, err := opts.load()
			if err != nil {
				return err
			}
			requests, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var engine *calculation.CalculationEngine
			if noAudit {
				engine = a.engine(nil)
			} else {
				store, err := a.openAudit(ctx)
				if err != nil {
					return err
				}
				defer store.Close()
				engine = a.engine(store.Sink)
			}

			var actor *string
			if performedBy != "" {
				actor = &performedBy
			}

			results := make([]domain.TaxCalculationResult, 0, len(requests))
			for _, req := range requests {
				var result *domain.TaxCalculationResult
				if noAudit {
					result, err = engine.Compute(req)
				} else {
					result, err = engine.Calculate(ctx, req, actor)
				}
				if err != nil {
					return fmt.Errorf("employee %s: %w", req.EmployeeID, err)
				}
				results = append(results, *result)
			}

			if save {
				filename, err := output.WriteFormatted(formatter, results, fileExtension(format))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
				return nil
			}

			data, err := formatter.Format(results)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "console", "output format: "+strings.Join(output.AvailableFormats(), ", "))
	cmd.Flags().BoolVar(&noAudit, "no-audit", false, "compute only; do not write audit records")
	cmd.Flags().BoolVar(&save, "save", false, "write the report to a timestamped file instead of stdout")
	cmd.Flags().BoolVar(&assumptions, "assumptions", false, "append modelling assumptions to console output")
	cmd.Flags().StringVar(&performedBy, "performed-by", "", "actor recorded on audit records (default: system)")
	return cmd
}

func fileExtension(format string) string {
	if format == "console" {
		return "txt"
	}
	return format
}
