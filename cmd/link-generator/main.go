package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rp-pay-dashboard/internal/observability"
	"rp-pay-dashboard/internal/tenant"
)

// PaymentLinkRequest matches the body POST /api/v1/payments accepts.
type PaymentLinkRequest struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency,omitempty"`
	Concept       string `json:"concept"`
}

var currencies = []string{"USD", "USD", "USD", "BRL", "MXN"}

func main() {
	targetURL := flag.String("target", "http://localhost:8080/api/v1/payments", "Target URL for creating payment links")
	rps := flag.Int("rps", 2, "Requests per second")
	tenantID := flag.String("tenant", "", "Tenant to create links for")
	flag.Parse()

	logger := observability.SetupLogger("development")
	if *rps <= 0 {
		logger.Error("rps must be positive", "rps", *rps)
		os.Exit(1)
	}
	logger.Info("Starting link generator", "target", *targetURL, "rps", *rps)

	ticker := time.NewTicker(time.Second / time.Duration(*rps))
	defer ticker.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: 10 * time.Second}
	for {
		select {
		case <-ticker.C:
			go sendRequest(ctx, client, *targetURL, *tenantID, fakeRequest(), logger)
		case <-ctx.Done():
			logger.Info("Shutting down generator...")
			return
		}
	}
}

// fakeRequest builds a plausible link request; amounts stay between 10.00 and 2000.00.
func fakeRequest() PaymentLinkRequest {
	cents := 1000 + rand.Int63n(199_001)
	return PaymentLinkRequest{
		CustomerID:    uuid.NewString(),
		CustomerName:  faker.FirstName() + " " + faker.LastName(),
		CustomerEmail: faker.Email(),
		Amount:        decimal.New(cents, -2).StringFixed(2),
		Currency:      currencies[rand.Intn(len(currencies))],
		Concept:       faker.Sentence(),
	}
}

func sendRequest(ctx context.Context, client *http.Client, url, tenantID string, reqData PaymentLinkRequest, logger *slog.Logger) {
	body, err := json.Marshal(reqData)
	if err != nil {
		logger.Error("Failed to marshal request", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.Error("Failed to build request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if tenantID != "" {
		req.Header.Set(tenant.Header, tenantID)
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("Failed to send request", "error", err)
		return
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusCreated {
		logger.Warn("Link not created", "status", resp.StatusCode, "amount", reqData.Amount)
		return
	}
	logger.Info("Link created", "customer", reqData.CustomerName, "amount", fmt.Sprintf("%s %s", reqData.Amount, reqData.Currency))
}
