package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/phrasedrill/internal/infrastructure/config"
)

// NewDriver opens the configured database and wraps it in an ent SQL driver.
// The returned cleanup closes the pool.
func NewDriver(cfg *config.Config, logger *logrus.Logger) (dialect.Driver, func(), error) {
	driverName, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database driver: %w", err)
	}
	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database dsn: %w", err)
	}

	var (
		rawDB *sql.DB
		name  string
	)
	switch driverName {
	case "sqlite3":
		rawDB, err = sql.Open("sqlite3", dsn)
		name = dialect.SQLite
	case "postgres":
		rawDB, err = sql.Open("postgres", dsn)
		name = dialect.Postgres
	case "pgx":
		rawDB, err = openPGX(dsn, cfg.Database.LogSQL, logger)
		name = dialect.Postgres
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s db: %w", driverName, err)
	}
	if driverName == "sqlite3" {
		rawDB.SetMaxOpenConns(1)
		rawDB.SetMaxIdleConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("ping %s db: %w", driverName, err)
	}

	var drv dialect.Driver = entsql.OpenDB(name, rawDB)
	if cfg.Database.LogSQL && driverName != "pgx" {
		drv = dialect.DebugWithContext(drv, func(_ context.Context, args ...any) {
			logger.WithField("component", "sql").Debug(args...)
		})
	}

	return drv, func() { _ = drv.Close() }, nil
}

func openPGX(dsn string, logSQL bool, logger *logrus.Logger) (*sql.DB, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	if logSQL {
		connCfg.Tracer = &tracelog.TraceLog{
			Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
				logger.WithFields(logrus.Fields(data)).WithField("pgx_level", lvl.String()).Debug(msg)
			}),
			LogLevel: tracelog.LogLevelTrace,
		}
	}
	return stdlib.OpenDB(*connCfg), nil
}
