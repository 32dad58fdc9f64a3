package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"portfolio/devserver/config"
	"portfolio/devserver/database"
)

// OpenSinks connects every mirror enabled in cfg. On error, sinks opened so
// far are closed.
func OpenSinks(ctx context.Context, cfg config.SinksConfig, logger *zap.Logger) (*MultiSink, error) {
	var sinks []EventSink
	fail := func(err error) (*MultiSink, error) {
		NewMultiSink(logger, cfg.Timeout, sinks...).Close()
		return nil, err
	}

	if cfg.ClickHouse.Enabled() {
		client, err := database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			return fail(fmt.Errorf("clickhouse sink: %w", err))
		}
		sink, err := NewClickHouseSink(ctx, client, logger)
		if err != nil {
			client.Close()
			return fail(fmt.Errorf("clickhouse sink: %w", err))
		}
		sinks = append(sinks, sink)
	}

	if cfg.Postgres.Enabled() {
		client, err := database.NewPostgresDB(ctx, cfg.Postgres.DSN, logger)
		if err != nil {
			return fail(fmt.Errorf("postgres sink: %w", err))
		}
		sink, err := NewSQLSink(ctx, client, logger)
		if err != nil {
			client.Close()
			return fail(fmt.Errorf("postgres sink: %w", err))
		}
		sinks = append(sinks, sink)
	}

	if cfg.SQLite.Enabled() {
		client, err := database.NewSQLiteDB(ctx, cfg.SQLite.Path, logger)
		if err != nil {
			return fail(fmt.Errorf("sqlite sink: %w", err))
		}
		sink, err := NewSQLSink(ctx, client, logger)
		if err != nil {
			client.Close()
			return fail(fmt.Errorf("sqlite sink: %w", err))
		}
		sinks = append(sinks, sink)
	}

	return NewMultiSink(logger, cfg.Timeout, sinks...), nil
}
