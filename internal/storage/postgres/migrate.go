package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/hongminglow/jwt-auth-api/internal/logging"
	"github.com/hongminglow/jwt-auth-api/internal/storage/postgres/migrations"
)

const migrationsTable = "schema_migrations"

// migrate applies the embedded goose migrations through a database/sql view
// of the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrationsTable)
	goose.SetLogger(gooseLogger{log: log.With().Str(logging.FieldComponent, "migrations").Logger()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose's printf-style output into zerolog.
type gooseLogger struct {
	log zerolog.Logger
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error().Msgf(format, v...)
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Info().Msgf(format, v...)
}
