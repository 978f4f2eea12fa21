// Package db provides the PostgreSQL-backed event store plus an in-memory
// substitute for local runs. Repositories accept the DBTX interface, which
// both *pgxpool.Pool and pgx.Tx satisfy, so the same code works inside or
// outside a transaction.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"firebay/internal/config"
	"firebay/internal/types"
)

// DBTX is the minimal query interface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPool creates a tuned connection pool and verifies connectivity with a
// ping before returning it.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL.Unmask())
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalDB,
			"failed to parse database URL",
			err,
		)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalDB,
			"failed to create database pool",
			err,
		)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, types.NewAppError(
			types.ErrCodeInternalDB,
			fmt.Sprintf("failed to ping database within %s", cfg.AcquireTimeout),
			err,
		)
	}

	return pool, nil
}

// EventStore is the persistence seam for the detected-event registry.
// Backed by PostgreSQL in deployed environments and by MemoryEventStore
// locally.
type EventStore interface {
	Insert(ctx context.Context, event *types.DetectedEvent) error
	List(ctx context.Context, limit int) ([]types.DetectedEvent, error)
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}
