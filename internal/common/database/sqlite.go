package database

import (
	"database/sql"
	"fmt"
	"time"

	"disease-detector/internal/common/config"

	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens the embedded patient store. Writes are serialized by
// SQLite anyway, so the pool stays small.
func NewSQLiteDB(cfg *config.SQLiteConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 4
	}
	if cfg.Path == ":memory:" {
		// every connection to a private memory db is a new database
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := ping(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
