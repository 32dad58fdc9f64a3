package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"portfolio/devserver/database"
	"portfolio/devserver/models"
)

const clickHouseSchema = `
	CREATE TABLE IF NOT EXISTS analytics_events (
		event_type   String,
		page         String,
		session_id   String,
		visitor_hash String,
		ip_hash      String,
		timestamp    DateTime64(3, 'UTC'),
		browser      String,
		is_mobile    Bool,
		referrer     String,
		payload      String
	) ENGINE = MergeTree
	ORDER BY (timestamp, event_type)
`

type ClickHouseSink struct {
	client *database.ClickHouseClient
	logger *zap.Logger
}

// NewClickHouseSink makes sure the analytics_events table exists.
func NewClickHouseSink(ctx context.Context, client *database.ClickHouseClient, logger *zap.Logger) (*ClickHouseSink, error) {
	if err := client.Conn.Exec(ctx, clickHouseSchema); err != nil {
		return nil, fmt.Errorf("creating analytics_events table: %w", err)
	}
	return &ClickHouseSink{client: client, logger: logger}, nil
}

func (s *ClickHouseSink) Name() string { return "clickhouse" }

func (s *ClickHouseSink) Write(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.client.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			event_type, page, session_id, visitor_hash, ip_hash,
			timestamp, browser, is_mobile, referrer, payload
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.Event,
			event.Page,
			event.SessionID,
			event.VisitorHash,
			event.IPHash,
			time.UnixMilli(event.Timestamp).UTC(),
			event.Browser,
			event.IsMobile,
			event.Referrer,
			event.Payload(),
		)
		if err != nil {
			s.logger.Warn("skipping event in batch", zap.String("event", event.Event), zap.Error(err))
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	s.logger.Debug("mirrored events to ClickHouse", zap.Int("events", len(events)))
	return nil
}

func (s *ClickHouseSink) Close() error {
	return s.client.Close()
}
