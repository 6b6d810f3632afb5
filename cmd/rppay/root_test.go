package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rp-pay-dashboard/internal/config"
	"rp-pay-dashboard/internal/wiring"
)

func fixtureStack(t *testing.T) *wiring.Stack {
	t.Helper()
	cfg, err := config.Parse([]byte("links:\n  signing_secret: s3cret\n"))
	require.NoError(t, err)
	stack, err := wiring.Build(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(stack.Close)
	return stack
}

func run(t *testing.T, stack *wiring.Stack, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	cmd := newRootCmd(&out, stack)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPaymentsList(t *testing.T) {
	out, err := run(t, fixtureStack(t), "payments", "list", "--status", "approved")
	require.NoError(t, err)
	assert.Contains(t, out, "Maria Gonzalez")
	assert.Contains(t, out, "Ana Silva")
	assert.NotContains(t, out, "Carlos Rodriguez")
	assert.Contains(t, out, "page 1 of 1, 2 payments")

	_, err = run(t, fixtureStack(t), "payments", "list", "--status", "paid")
	assert.ErrorContains(t, err, "unknown status")
}

func TestPaymentsShowAndReceipt(t *testing.T) {
	stack := fixtureStack(t)

	out, err := run(t, stack, "payments", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Maria Gonzalez <maria.g@gmail.com>")
	assert.Contains(t, out, "payment_approved")

	out, err = run(t, stack, "payments", "receipt", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Carlos Rodriguez")

	_, err = run(t, stack, "payments", "show", "missing")
	assert.Error(t, err)
}

func TestPaymentsExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	out, err := run(t, fixtureStack(t), "payments", "export", "--method", "pix", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 payments")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Carlos Rodriguez")
}

func TestLinksCreate(t *testing.T) {
	stack := fixtureStack(t)

	out, err := run(t, stack, "links", "create", "--name", "Jorge Perez", "--email", "jorgito@tech.co", "--amount", "99.90", "--concept", "Hosting")
	require.NoError(t, err)
	assert.Contains(t, out, "for 99.90 USD")
	assert.Contains(t, out, "https://pay.rp-pay.com/l/")

	out, err = run(t, stack, "payments", "list", "--query", "jorge")
	require.NoError(t, err)
	assert.Contains(t, out, "Jorge Perez")

	_, err = run(t, stack, "links", "create", "--name", "Jorge Perez", "--email", "jorgito@tech.co", "--amount", "5", "--concept", "Hosting")
	assert.ErrorContains(t, err, "below the account minimum")
}

func TestCustomersSearch(t *testing.T) {
	out, err := run(t, fixtureStack(t), "customers", "search", "silva")
	require.NoError(t, err)
	assert.Contains(t, out, "ana.silva@hotmail.com")

	out, err = run(t, fixtureStack(t), "customers", "search", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, `No customers match "nobody"`)
}

func TestAdmin(t *testing.T) {
	stack := fixtureStack(t)

	out, err := run(t, stack, "admin", "overview")
	require.NoError(t, err)
	assert.Contains(t, out, "Accounts")
	assert.Contains(t, out, "7")

	out, err = run(t, stack, "admin", "accounts", "--status", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Marketing Pro")
	assert.Contains(t, out, "Real Estate X")
	assert.NotContains(t, out, "Fitness Hub")

	out, err = run(t, stack, "admin", "logs", "--status", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid signature in webhook payload.")
	assert.NotContains(t, out, "Contact updated")
}

func TestSettingsShow(t *testing.T) {
	out, err := run(t, fixtureStack(t), "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "#0ea5e9")
}
