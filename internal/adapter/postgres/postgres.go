// Package postgres provides the PostgreSQL connection pools, migration
// runner, and store implementations for the tenant directory and per-tenant
// databases.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/fitstack/fitstack/internal/config"
)

//go:embed migrations/system/*.sql migrations/tenant/*.sql
var migrations embed.FS

// NewDirectoryPool creates the pgxpool connection pool for the shared tenant
// directory database and verifies it with a ping.
func NewDirectoryPool(ctx context.Context, cfg config.Directory) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse directory dsn: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.HealthCheck

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create directory pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping directory: %w", err)
	}

	return pool, nil
}

// NewTenantPool creates a pgxpool connection pool for one tenant database.
// The base DSN's database component is replaced with the given database name;
// pool bounds come from the tenant pool configuration. The pool is verified
// with a ping so a broken database surfaces immediately instead of on first
// query.
func NewTenantPool(ctx context.Context, cfg config.Tenants, database string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.BaseDSN)
	if err != nil {
		return nil, fmt.Errorf("parse tenant base dsn: %w", err)
	}

	poolCfg.ConnConfig.Database = database
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.HealthCheck

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool for %s: %w", database, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", database, err)
	}

	return pool, nil
}

// openSQL builds a database/sql handle (needed by goose) for the given DSN,
// optionally overriding the database component.
func openSQL(dsn, database string) (*sql.DB, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if database != "" {
		connCfg.Database = database
	}
	return stdlib.OpenDB(*connCfg), nil
}

// RunSystemMigrations applies all pending migrations for the tenant directory
// database from the embedded SQL files.
func RunSystemMigrations(ctx context.Context, cfg config.Directory) error {
	db, err := openSQL(cfg.DSN, "")
	if err != nil {
		return fmt.Errorf("open directory db for migrations: %w", err)
	}
	defer func() { _ = db.Close() }()

	return runMigrations(ctx, db, "migrations/system")
}

// RunTenantMigrations applies all pending tenant-schema migrations to one
// tenant database. Called at provisioning time and on upgrade rollouts.
func RunTenantMigrations(ctx context.Context, cfg config.Tenants, database string) error {
	db, err := openSQL(cfg.BaseDSN, database)
	if err != nil {
		return fmt.Errorf("open %s for migrations: %w", database, err)
	}
	defer func() { _ = db.Close() }()

	return runMigrations(ctx, db, "migrations/tenant")
}

func runMigrations(ctx context.Context, db *sql.DB, dir string) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("run migrations %s: %w", dir, err)
	}

	return nil
}

// CreateDatabase creates a tenant database using the directory pool's
// connection. The name must already be validated against the tenant naming
// convention; it is interpolated as an identifier because CREATE DATABASE
// does not accept bind parameters.
func CreateDatabase(ctx context.Context, pool *pgxpool.Pool, name string) error {
	ident := pgx.Identifier{name}.Sanitize()
	if _, err := pool.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

// DropDatabase removes a tenant database. Used by tenant deletion after the
// pooled connection has been evicted.
func DropDatabase(ctx context.Context, pool *pgxpool.Pool, name string) error {
	ident := pgx.Identifier{name}.Sanitize()
	if _, err := pool.Exec(ctx, "DROP DATABASE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("drop database %s: %w", name, err)
	}
	return nil
}
