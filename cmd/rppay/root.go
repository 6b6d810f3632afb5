package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rp-pay-dashboard/internal/app"
	"rp-pay-dashboard/internal/config"
	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/observability"
	"rp-pay-dashboard/internal/tenant"
	"rp-pay-dashboard/internal/wiring"
)

// cli carries what every subcommand needs.
type cli struct {
	out        io.Writer
	configPath string
	tenantID   string
	cfg        *config.Config
	logger     *slog.Logger
	stack      *wiring.Stack
}

// newRootCmd builds the command tree. A non-nil stack is used as is instead
// of being built from the config file.
func newRootCmd(out io.Writer, stack *wiring.Stack) *cobra.Command {
	c := &cli{out: out, stack: stack}

	root := &cobra.Command{
		Use:          "rppay",
		Short:        "Operate the payment link dashboard",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.connect(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if stack == nil && c.stack != nil {
				c.stack.Close()
			}
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "configs/config.yaml", "Path to the config file")
	root.PersistentFlags().StringVar(&c.tenantID, "tenant", "", "Tenant to act for")

	root.AddCommand(
		c.paymentsCmd(),
		c.linksCmd(),
		c.customersCmd(),
		c.settingsCmd(),
		c.adminCmd(),
		c.dlqCmd(),
	)
	return root
}

func (c *cli) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = observability.SetupLogger(cfg.App.Env)
	return nil
}

func (c *cli) connect(ctx context.Context) error {
	if c.stack != nil {
		return nil
	}
	if err := c.loadConfig(); err != nil {
		return err
	}
	stack, err := wiring.Build(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	c.stack = stack
	return nil
}

func (c *cli) service() *app.PaymentService {
	return c.stack.Service
}

// scope applies --tenant to ctx.
func (c *cli) scope(ctx context.Context) context.Context {
	if c.tenantID != "" {
		return tenant.WithID(ctx, c.tenantID)
	}
	return ctx
}

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 0, 3, ' ', 0)
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func paintPaymentStatus(s domain.PaymentStatus) string {
	switch s {
	case domain.StatusApproved:
		return green(s)
	case domain.StatusRejected:
		return red(s)
	default:
		return yellow(s)
	}
}

func paintLogStatus(s domain.LogStatus) string {
	switch s {
	case domain.LogSuccess:
		return green(s)
	case domain.LogError:
		return red(s)
	default:
		return yellow(s)
	}
}

func paintConnection(s domain.ConnectionStatus) string {
	switch s {
	case domain.ConnConnected:
		return green(s)
	case domain.ConnError:
		return red(s)
	default:
		return yellow(s)
	}
}
