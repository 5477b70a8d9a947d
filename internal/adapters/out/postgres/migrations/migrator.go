// Package migrations applies the embedded goose migrations that define the
// time_slots and orders schema. Production start-up and the integration
// test suites run the same files.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	// registers the "postgres" database/sql driver used by goose
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var files embed.FS

const dir = "sql"

// Migrator wraps goose over its own database/sql connection.
type Migrator struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMigrator opens a lib/pq connection for dsn. Close it when done.
func NewMigrator(dsn string, logger *zap.Logger) (*Migrator, error) {
	goose.SetBaseFS(files)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}

	return &Migrator{db: db, logger: logger.With(zap.String("component", "migrator"))}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	m.logger.Info("applying database migrations")

	if err := goose.UpContext(ctx, m.db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	m.logger.Info("migrations applied", zap.Int64("version", version))
	return nil
}

// Down rolls back every migration. Used by tests that need an empty schema.
func (m *Migrator) Down(ctx context.Context) error {
	if err := goose.DownToContext(ctx, m.db, dir, 0); err != nil {
		return fmt.Errorf("roll back migrations: %w", err)
	}
	return nil
}

func (m *Migrator) Close() error {
	return m.db.Close()
}
