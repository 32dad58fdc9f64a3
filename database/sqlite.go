package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens (creating if needed) a SQLite file. ":memory:" is
// accepted for tests.
func NewSQLiteDB(ctx context.Context, path string, logger *zap.Logger) (*DBClient, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is not configured")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database %s: %w", path, err)
	}
	// One writer; an in-memory database also lives only as long as its connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to sqlite database %s: %w", path, err)
	}

	logger.Info("opened SQLite database", zap.String("path", path))
	return &DBClient{DB: db, Dialect: DialectSQLite, logger: logger}, nil
}
