// Package eventlog provides the append-only SQLite analytics log.
package eventlog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tooldexapp/tooldex-server/internal/domain"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store provides SQLite-backed persistence for analytics events.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a new event log at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows a single writer; keep the pool small.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	// Run schema migration.
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable. Used by health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Record appends one analytics event. The ID and timestamp are assigned
// here so callers only describe what happened.
func (s *Store) Record(ctx context.Context, toolID, userID string, eventType domain.EventType, referrer, userAgent string) error {
	if !eventType.Valid() {
		return fmt.Errorf("invalid event type %q", eventType)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics_events (id, tool_id, user_id, event_type, referrer, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		toolID,
		nullString(userID),
		string(eventType),
		nullString(referrer),
		nullString(userAgent),
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// RecordAPICall increments the per-day usage counter for an endpoint and
// also appends an API_CALL event so the daily breakdown sees it.
func (s *Store) RecordAPICall(ctx context.Context, toolID, endpoint string) error {
	day := time.Now().UTC().Truncate(24 * time.Hour)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_usage (id, tool_id, endpoint, count, day)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (tool_id, endpoint, day) DO UPDATE SET count = count + 1`,
		uuid.NewString(),
		toolID,
		endpoint,
		formatTime(day),
	)
	if err != nil {
		return fmt.Errorf("upsert api usage: %w", err)
	}

	return s.Record(ctx, toolID, "", domain.EventAPICall, "", "")
}

// EventsInRange returns a tool's events with created_at in [from, to),
// oldest first. The caller reduces these into dashboard aggregates.
func (s *Store) EventsInRange(ctx context.Context, toolID string, from, to time.Time) ([]*domain.AnalyticsEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tool_id, user_id, event_type, referrer, user_agent, created_at
		FROM analytics_events
		WHERE tool_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at ASC`,
		toolID, formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*domain.AnalyticsEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// EndpointUsageInRange sums api_usage counts per endpoint for a tool over
// days in [from, to), highest first.
func (s *Store) EndpointUsageInRange(ctx context.Context, toolID string, from, to time.Time) ([]domain.EndpointUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT endpoint, SUM(count)
		FROM api_usage
		WHERE tool_id = ? AND day >= ? AND day < ?
		GROUP BY endpoint
		ORDER BY SUM(count) DESC`,
		toolID, formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("query api usage: %w", err)
	}
	defer rows.Close()

	var usage []domain.EndpointUsage
	for rows.Next() {
		var u domain.EndpointUsage
		if err := rows.Scan(&u.Endpoint, &u.Count); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// scanEvent scans a sql.Rows row into a domain.AnalyticsEvent.
func scanEvent(scanner interface{ Scan(dest ...any) error }) (*domain.AnalyticsEvent, error) {
	var (
		e         domain.AnalyticsEvent
		eventType string
		userID    sql.NullString
		referrer  sql.NullString
		userAgent sql.NullString
		createdAt string
	)

	err := scanner.Scan(
		&e.ID,
		&e.ToolID,
		&userID,
		&eventType,
		&referrer,
		&userAgent,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.Type = domain.EventType(eventType)
	if userID.Valid {
		e.UserID = userID.String
	}
	if referrer.Valid {
		e.Referrer = referrer.String
	}
	if userAgent.Valid {
		e.UserAgent = userAgent.String
	}

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString returns a sql.NullString from a string, empty meaning NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
