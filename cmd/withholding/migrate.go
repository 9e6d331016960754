package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/withholding/internal/audit"
	"github.com/rgehrsitz/withholding/internal/config"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply audit store schema migrations",
		Long: `Apply the embedded schema migrations to the configured audit store.
Only the sqlite and postgres drivers have a schema.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}

			s := a.settings.Audit
			switch s.Driver {
			case config.AuditDriverSQLite:
				err = audit.MigrateSQLite(s.SQLitePath)
			case config.AuditDriverPostgres:
				err = audit.MigratePostgres(s.DatabaseURL)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to migrate for audit driver %s\n", s.Driver)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied for audit driver %s\n", s.Driver)
			return nil
		},
	}
}
