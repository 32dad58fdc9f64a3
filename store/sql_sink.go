package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"portfolio/devserver/database"
	"portfolio/devserver/models"
)

var sqlSchemas = map[database.Dialect]string{
	database.DialectPostgres: `
		CREATE TABLE IF NOT EXISTS analytics (
			id BIGSERIAL PRIMARY KEY,
			event_type TEXT NOT NULL,
			page TEXT,
			session_id TEXT,
			visitor_hash TEXT,
			timestamp BIGINT,
			ip_hash TEXT,
			browser TEXT,
			is_mobile BOOLEAN,
			referrer TEXT,
			data TEXT
		)`,
	database.DialectSQLite: `
		CREATE TABLE IF NOT EXISTS analytics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_type TEXT NOT NULL,
			page TEXT,
			session_id TEXT,
			visitor_hash TEXT,
			timestamp INTEGER,
			ip_hash TEXT,
			browser TEXT,
			is_mobile BOOLEAN,
			referrer TEXT,
			data TEXT
		)`,
}

var analyticsColumns = []string{
	"event_type", "page", "session_id", "visitor_hash", "timestamp",
	"ip_hash", "browser", "is_mobile", "referrer", "data",
}

// SQLSink mirrors events into an `analytics` table on Postgres or SQLite.
type SQLSink struct {
	client     *database.DBClient
	insertStmt string
	logger     *zap.Logger
}

func NewSQLSink(ctx context.Context, client *database.DBClient, logger *zap.Logger) (*SQLSink, error) {
	schema, ok := sqlSchemas[client.Dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported sql dialect %q", client.Dialect)
	}
	if _, err := client.DB.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating analytics table: %w", err)
	}

	return &SQLSink{
		client:     client,
		insertStmt: insertStatement(client.Dialect),
		logger:     logger,
	}, nil
}

func insertStatement(dialect database.Dialect) string {
	placeholders := make([]string, len(analyticsColumns))
	for i := range placeholders {
		if dialect == database.DialectPostgres {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO analytics (%s) VALUES (%s)",
		strings.Join(analyticsColumns, ", "), strings.Join(placeholders, ", "))
}

func (s *SQLSink) Name() string { return string(s.client.Dialect) }

func (s *SQLSink) Write(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.client.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.insertStmt)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		_, err := stmt.ExecContext(ctx,
			event.Event,
			event.Page,
			event.SessionID,
			event.VisitorHash,
			event.Timestamp,
			event.IPHash,
			event.Browser,
			event.IsMobile,
			event.Referrer,
			event.Payload(),
		)
		if err != nil {
			return fmt.Errorf("inserting %s event: %w", event.Event, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing events: %w", err)
	}

	s.logger.Debug("mirrored events", zap.String("sink", s.Name()), zap.Int("events", len(events)))
	return nil
}

func (s *SQLSink) Close() error {
	return s.client.Close()
}
