// Command withholding runs the multi-state withholding service and its
// operator tooling.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	rulesPath  string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "withholding",
		Short: "Multi-state payroll tax withholding",
		Long: `Calculate per-pay-period state, federal and FICA withholding for employees
who work across several jurisdictions, and serve the calculation over HTTP.

Settings come from withholding.yaml, WITHHOLDING_* environment variables and
a .env file. The rule table defaults to the embedded 2024 schedules.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "settings file (default ./withholding.yaml)")
	root.PersistentFlags().StringVar(&opts.rulesPath, "rules", "", "rule table YAML (default: embedded rules)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		versionCmd(),
		serveCmd(opts),
		calculateCmd(opts),
		compareCmd(opts),
		rulesCmd(opts),
		migrateCmd(opts),
		auditCmd(opts),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "withholding %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
