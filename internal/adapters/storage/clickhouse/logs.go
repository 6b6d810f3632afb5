// Package clickhouse stores operator-facing system logs in ClickHouse.
package clickhouse

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"rp-pay-dashboard/internal/config"
	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const defaultLimit = 500

// LogStore implements ports.LogStore over one MergeTree table.
type LogStore struct {
	conn  driver.Conn
	table string
	now   func() time.Time
}

var _ ports.LogStore = (*LogStore)(nil)

// Open connects using cfg and checks the connection.
func Open(ctx context.Context, cfg config.ClickHouseConfig) (*LogStore, error) {
	table, err := qualifiedTable(cfg.Database, cfg.Table)
	if err != nil {
		return nil, err
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	return &LogStore{conn: conn, table: table, now: time.Now}, nil
}

func qualifiedTable(database, table string) (string, error) {
	if !identifier.MatchString(table) {
		return "", fmt.Errorf("invalid ClickHouse table name %q", table)
	}
	if database == "" {
		return table, nil
	}
	if !identifier.MatchString(database) {
		return "", fmt.Errorf("invalid ClickHouse database name %q", database)
	}
	return database + "." + table, nil
}

// EnsureSchema creates the log table when it is missing.
func (s *LogStore) EnsureSchema(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
		id           String,
		ts           DateTime64(3, 'UTC'),
		client       String,
		event_type   LowCardinality(String),
		message      String,
		payment_id   String,
		status       LowCardinality(String),
		details_json String
	) ENGINE = MergeTree ORDER BY (ts, id)`
	if err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.table, err)
	}
	return nil
}

func (s *LogStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *LogStore) Close() error {
	return s.conn.Close()
}

// listQuery builds the SELECT for f and its positional arguments.
func listQuery(table string, f ports.LogFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Source != "" {
		where = append(where, "client = ?")
		args = append(args, f.Source)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var b strings.Builder
	b.WriteString("SELECT id, ts, client, event_type, message, payment_id, status, details_json FROM ")
	b.WriteString(table)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY ts DESC LIMIT %d", limit)
	return b.String(), args
}

func (s *LogStore) ListLogs(ctx context.Context, f ports.LogFilter) ([]domain.SystemLog, error) {
	query, args := listQuery(s.table, f)
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SystemLog, 0)
	for rows.Next() {
		var (
			l                 domain.SystemLog
			eventType, status string
		)
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Client, &eventType, &l.Message, &l.PaymentID, &status, &l.DetailsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		l.EventType = domain.LogEventType(eventType)
		l.Status = domain.LogStatus(status)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *LogStore) AppendLog(ctx context.Context, entry domain.SystemLog) error {
	if entry.ID == "" {
		entry.ID = "log_" + uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	err := s.conn.Exec(ctx, `INSERT INTO `+s.table+` (id, ts, client, event_type, message, payment_id, status, details_json) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp,
		entry.Client,
		string(entry.EventType),
		entry.Message,
		entry.PaymentID,
		string(entry.Status),
		entry.DetailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert log %s: %w", entry.ID, err)
	}
	return nil
}
