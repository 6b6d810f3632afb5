package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/listing"
	"rp-pay-dashboard/internal/views"
)

type criteriaFlags struct {
	query, status, method, from, to string
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Match customer name or email")
	cmd.Flags().StringVar(&f.status, "status", listing.All, "pending, approved, rejected or all")
	cmd.Flags().StringVar(&f.method, "method", listing.All, "card, pix, transfer, link or all")
	cmd.Flags().StringVar(&f.from, "from", "", "Earliest creation date, 2006-01-02")
	cmd.Flags().StringVar(&f.to, "to", "", "Latest creation date, 2006-01-02")
}

func (f *criteriaFlags) criteria() (listing.Criteria, error) {
	c := listing.Criteria{Query: f.query, Status: f.status, Method: f.method}
	if c.Status != listing.All && !domain.PaymentStatus(c.Status).Valid() {
		return c, fmt.Errorf("unknown status %q", c.Status)
	}
	if c.Method != listing.All && !domain.PaymentMethod(c.Method).Valid() {
		return c, fmt.Errorf("unknown method %q", c.Method)
	}
	if f.from != "" {
		t, err := time.Parse(time.DateOnly, f.from)
		if err != nil {
			return c, fmt.Errorf("invalid --from: %w", err)
		}
		c.From = t
	}
	if f.to != "" {
		t, err := time.Parse(time.DateOnly, f.to)
		if err != nil {
			return c, fmt.Errorf("invalid --to: %w", err)
		}
		c.To = listing.EndOfDay(t)
	}
	return c, nil
}

func (c *cli) paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "payments", Short: "Browse payment requests"}

	var filter criteriaFlags
	var page, pageSize int
	list := &cobra.Command{
		Use:   "list",
		Short: "List payments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria, err := filter.criteria()
			if err != nil {
				return err
			}
			p, err := c.service().History(c.scope(cmd.Context()), criteria, page, pageSize)
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintln(w, "ID\tCUSTOMER\tAMOUNT\tSTATUS\tMETHOD\tCREATED")
			for _, p := range p.Items {
				fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\t%s\n", p.ID, p.CustomerName, p.Amount.StringFixed(2), p.Currency, paintPaymentStatus(p.Status), p.Method, p.CreatedAt.Format(time.DateTime))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			c.printf("page %d of %d, %d payments\n", p.CurrentPage, p.TotalPages, p.TotalItems)
			return nil
		},
	}
	filter.register(list)
	list.Flags().IntVar(&page, "page", 1, "Page number")
	list.Flags().IntVar(&pageSize, "page-size", 10, "Payments per page")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a payment and its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.service().Detail(c.scope(cmd.Context()), args[0])
			if err != nil {
				return err
			}
			c.printf("Payment %s\n", d.ID)
			c.printf("  Customer: %s <%s>\n", d.CustomerName, d.CustomerEmail)
			c.printf("  Amount:   %s %s\n", d.Amount.StringFixed(2), d.Currency)
			c.printf("  Concept:  %s\n", d.Description)
			c.printf("  Status:   %s\n", paintPaymentStatus(d.Status))
			c.printf("  Link:     %s\n", d.PaymentLink)
			w := c.table()
			fmt.Fprintln(w, "\nWHEN\tEVENT")
			for _, ev := range d.Events {
				fmt.Fprintf(w, "%s\t%s\n", ev.CreatedAt.Format(time.DateTime), ev.Type)
			}
			return w.Flush()
		},
	}

	var exportFilter criteriaFlags
	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered payments as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria, err := exportFilter.criteria()
			if err != nil {
				return err
			}
			payments, err := c.service().FilteredPayments(c.scope(cmd.Context()), criteria)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return listing.WriteCSV(c.out, payments)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := listing.WriteCSV(f, payments); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			c.printf("exported %d payments to %s\n", len(payments), output)
			return nil
		},
	}
	exportFilter.register(export)
	export.Flags().StringVarP(&output, "output", "o", listing.ExportFilename(time.Now()), "File to write, - for stdout")

	receipt := &cobra.Command{
		Use:   "receipt <id>",
		Short: "Print the receipt of a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.service().Detail(c.scope(cmd.Context()), args[0])
			if err != nil {
				return err
			}
			text, err := views.Receipt(*d)
			if err != nil {
				return err
			}
			c.printf("%s", text)
			return nil
		},
	}

	cmd.AddCommand(list, show, export, receipt)
	return cmd
}

func (c *cli) linksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "links", Short: "Create and resend payment links"}

	var name, email, amount, concept, currency string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a payment link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := decimal.NewFromString(strings.TrimSpace(amount))
			if err != nil {
				return fmt.Errorf("invalid --amount %q", amount)
			}
			p, err := c.service().CreatePaymentLink(c.scope(cmd.Context()), domain.NewPaymentRequest{
				CustomerName:  name,
				CustomerEmail: email,
				Amount:        value,
				Currency:      strings.ToUpper(currency),
				Description:   concept,
			})
			if err != nil {
				if f := views.Classify(err); f.Kind == views.FailureValidation {
					return fmt.Errorf("%s (%w)", f.Message, err)
				}
				return err
			}
			c.printf("Created %s for %s %s\n%s\n", p.ID, p.Amount.StringFixed(2), p.Currency, p.PaymentLink)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "Customer name")
	create.Flags().StringVar(&email, "email", "", "Customer email")
	create.Flags().StringVar(&amount, "amount", "", "Amount, such as 150.00")
	create.Flags().StringVar(&concept, "concept", "", "What the payment is for")
	create.Flags().StringVar(&currency, "currency", "", "ISO currency code; defaults to the account setting")
	for _, f := range []string{"name", "email", "amount", "concept"} {
		_ = create.MarkFlagRequired(f)
	}

	resend := &cobra.Command{
		Use:   "resend <payment-id>",
		Short: "Send the link of a payment again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.service().ResendLink(c.scope(cmd.Context()), args[0])
			if err != nil {
				return err
			}
			c.printf("Resend requested for %s <%s>\n", d.ID, d.CustomerEmail)
			return nil
		},
	}

	cmd.AddCommand(create, resend)
	return cmd
}

func (c *cli) customersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "customers", Short: "Look up customers"}
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search customers by name or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.service().SearchCustomers(c.scope(cmd.Context()), args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				c.printf("No customers match %q\n", args[0])
				return nil
			}
			w := c.table()
			fmt.Fprintln(w, "ID\tNAME\tEMAIL")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Name, r.Email)
			}
			return w.Flush()
		},
	}
	cmd.AddCommand(search)
	return cmd
}

func (c *cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "settings", Short: "Inspect account settings"}
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the account settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.service().Settings(c.scope(cmd.Context()))
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintf(w, "Test mode\t%t\n", s.TestMode)
			fmt.Fprintf(w, "Default currency\t%s\n", s.DefaultCurrency)
			fmt.Fprintf(w, "Minimum amount\t%s\n", s.MinAmount)
			fmt.Fprintf(w, "Paid tag\t%s\n", s.DefaultTagPaid)
			fmt.Fprintf(w, "Brand color\t%s\n", s.BrandColor)
			fmt.Fprintf(w, "CRM connected\t%t\n", s.CRMConnected)
			fmt.Fprintf(w, "Processor connected\t%t\n", s.ProcessorConnected)
			return w.Flush()
		},
	}
	cmd.AddCommand(show)
	return cmd
}
