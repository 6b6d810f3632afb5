// Package remote is the directory backend that talks to the payments REST service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"rp-pay-dashboard/internal/config"
	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/observability"
	"rp-pay-dashboard/internal/tenant"
)

// Client calls the payments service over HTTP. Every request carries the
// tenant header and is bounded by the configured timeout.
type Client struct {
	http     *http.Client
	baseURL  *url.URL
	tenantID string
	logger   *slog.Logger
}

// New creates a client for cfg. A nil transport means http.DefaultTransport;
// either way requests are traced.
func New(cfg config.RemoteConfig, transport http.RoundTripper, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse remote base url: %w", err)
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: observability.NewTracingTransport(transport),
		},
		baseURL:  base,
		tenantID: cfg.TenantID,
		logger:   logger,
	}, nil
}

// do sends one request and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(tenant.Header, tenant.FromContext(ctx, c.tenantID))

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(&domain.RemoteError{Kind: domain.ErrServiceUnreachable, Op: op, Err: err})
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(&domain.RemoteError{Kind: domain.ErrServiceUnreachable, Op: op, StatusCode: resp.StatusCode, Err: err})
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return c.fail(&domain.RemoteError{Kind: domain.ErrNotFound, Op: op, StatusCode: resp.StatusCode, Message: errorMessage(payload)})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return c.fail(&domain.RemoteError{Kind: domain.ErrServiceRejected, Op: op, StatusCode: resp.StatusCode, Message: errorMessage(payload)})
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return c.fail(&domain.RemoteError{Kind: domain.ErrServiceRejected, Op: op, StatusCode: resp.StatusCode, Message: "malformed response body", Err: err})
	}
	return nil
}

func (c *Client) fail(err *domain.RemoteError) error {
	kind := "rejected"
	switch {
	case errors.Is(err.Kind, domain.ErrServiceUnreachable):
		kind = "unreachable"
	case errors.Is(err.Kind, domain.ErrNotFound):
		kind = "not_found"
	}
	observability.RecordDirectoryFailure(err.Op, kind)
	c.logger.Warn("payment directory call failed", "op", err.Op, "kind", kind, "status", err.StatusCode, "error", err)
	return err
}

// errorMessage pulls a human-readable message out of an error payload.
func errorMessage(payload []byte) string {
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	return q
}
