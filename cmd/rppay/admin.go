package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rp-pay-dashboard/internal/listing"
)

func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "admin", Short: "Operator views across tenants"}

	overview := &cobra.Command{
		Use:   "overview",
		Short: "Count tenants per health class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := c.service().AdminOverview(cmd.Context())
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintf(w, "Accounts\t%d\n", o.TotalAccounts)
			fmt.Fprintf(w, "Healthy\t%s\n", green(o.HealthyAccounts))
			fmt.Fprintf(w, "With errors\t%s\n", red(o.AccountsWithErrors))
			fmt.Fprintf(w, "Disconnected\t%s\n", yellow(o.DisconnectedAccounts))
			fmt.Fprintf(w, "Recent errors\t%d\n", o.RecentErrors)
			return w.Flush()
		},
	}

	var accountQuery, accountStatus string
	accounts := &cobra.Command{
		Use:   "accounts",
		Short: "List tenant accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch accountStatus {
			case listing.All, listing.AccountActive, listing.AccountError, listing.AccountDisconnected:
			default:
				return fmt.Errorf("unknown status %q", accountStatus)
			}
			list, err := c.service().Accounts(cmd.Context(), listing.AccountCriteria{Query: accountQuery, Status: accountStatus})
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintln(w, "ID\tCOMPANY\tLOCATION\tCRM\tPROCESSOR\tLAST PAYMENT")
			for _, a := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s (%s)\n", a.ID, a.Company, a.LocationID, paintConnection(a.CRMStatus), paintConnection(a.ProcessorStatus), a.LastPaymentAt.Format(time.DateTime), a.LastPaymentAmount)
			}
			return w.Flush()
		},
	}
	accounts.Flags().StringVarP(&accountQuery, "query", "q", "", "Match company, email or location")
	accounts.Flags().StringVar(&accountStatus, "status", listing.All, "active, error, disconnected or all")

	account := &cobra.Command{
		Use:   "account <id>",
		Short: "Show one tenant account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.service().Account(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintf(w, "Company\t%s\n", a.Company)
			fmt.Fprintf(w, "Contact\t%s\n", a.ContactEmail)
			fmt.Fprintf(w, "Location\t%s\n", a.LocationID)
			fmt.Fprintf(w, "CRM\t%s\n", paintConnection(a.CRMStatus))
			fmt.Fprintf(w, "Processor\t%s\n", paintConnection(a.ProcessorStatus))
			fmt.Fprintf(w, "Installed\t%s\n", a.InstalledAt.Format(time.DateOnly))
			return w.Flush()
		},
	}

	var logQuery, logType, logStatus string
	logs := &cobra.Command{
		Use:   "logs",
		Short: "List system logs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.service().Logs(cmd.Context(), listing.LogCriteria{Query: logQuery, EventType: logType, Status: logStatus})
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintln(w, "TIME\tCLIENT\tEVENT\tSTATUS\tMESSAGE")
			for _, l := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.Timestamp.Format(time.DateTime), l.Client, l.EventType, paintLogStatus(l.Status), l.Message)
			}
			return w.Flush()
		},
	}
	logs.Flags().StringVarP(&logQuery, "query", "q", "", "Match client, message or payment id")
	logs.Flags().StringVar(&logType, "event-type", listing.All, "Event type or all")
	logs.Flags().StringVar(&logStatus, "status", listing.All, "success, warning, error or all")

	cmd.AddCommand(overview, accounts, account, logs)
	return cmd
}
