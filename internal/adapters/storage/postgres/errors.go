package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"rp-pay-dashboard/internal/core/domain"
)

// dbError wraps a failed database call. Connection failures and timeouts
// become ErrServiceUnreachable so callers treat them like any other outage.
func dbError(op string, err error) error {
	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return &domain.RemoteError{Kind: domain.ErrServiceUnreachable, Op: "postgres " + op, Err: err}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
