package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// DBClient wraps a database/sql handle for the SQL event mirrors.
type DBClient struct {
	DB      *sql.DB
	Dialect Dialect
	logger  *zap.Logger
}

// Dialect selects placeholder syntax and DDL differences between drivers.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func NewPostgresDB(ctx context.Context, dsn string, logger *zap.Logger) (*DBClient, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is not configured")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database (ping failed): %w", err)
	}

	logger.Info("connected to PostgreSQL")
	return &DBClient{DB: db, Dialect: DialectPostgres, logger: logger}, nil
}

func (c *DBClient) Close() error {
	if c.DB == nil {
		return nil
	}
	if err := c.DB.Close(); err != nil {
		return fmt.Errorf("closing %s database: %w", c.Dialect, err)
	}
	c.logger.Info("database connection closed", zap.String("dialect", string(c.Dialect)))
	return nil
}
