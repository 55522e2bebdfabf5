package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"climate-server/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Open returns a pooled, read-only handle to the climate dataset.
func Open(cfg config.Config) (*sql.DB, error) {
	db, err := openPool(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func openPool(cfg config.Config) (*sql.DB, error) {
	if cfg.Driver == config.DriverPgx {
		db, err := sql.Open(config.DriverPgx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		return db, nil
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.LogSQL {
		connector, err := NewLoggingConnector(dsn, slog.Default())
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		return sql.OpenDB(connector), nil
	}

	db, err := sql.Open(config.DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return db, nil
}

// buildDSN turns SQLitePath into a read-only sqlite URI. An explicit DSN is used as is.
func buildDSN(cfg config.Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := cfg.SQLitePath
	if !strings.HasPrefix(path, "file:") {
		// mode=ro never creates a file, so report a missing dataset clearly.
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("dataset %s: %w", path, err)
		}
	}

	params := []string{
		"mode=ro",
		"_query_only=1",
		"_busy_timeout=5000",
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
