package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func auditCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the calculation audit trail",
	}
	cmd.AddCommand(auditListCmd(opts))
	return cmd
}

func auditListCmd(opts *rootOptions) *cobra.Command {
	var (
		employee string
		limit    int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an employee's audit records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			store, err := a.openAudit(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if store.Lister == nil {
				return fmt.Errorf("audit driver %s does not support listing", store.Driver)
			}
			records, err := store.Lister.ListByEmployee(cmd.Context(), employee, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			if len(records) == 0 {
				fmt.Fprintf(out, "No audit records for %s\n", employee)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIMESTAMP\tSTATES\tPERFORMED BY\tGROSS\tNET")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID,
					r.Timestamp.UTC().Format(time.RFC3339),
					strings.Join(r.StatesInvolved, ","),
					r.PerformedByLabel(),
					r.Result.GrossPay.StringFixed(2),
					r.Result.NetPay.StringFixed(2))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&employee, "employee", "e", "", "employee ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum records to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print full records as JSON")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}
