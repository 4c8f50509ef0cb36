package stores

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StoreConfig selects and configures a trace database.
type StoreConfig struct {
	Type       string `json:"type"`       // "sqlite" or "postgres"
	Connection string `json:"connection"` // file path or DSN
}

// NewTraceStore opens the configured database and returns a TraceStore.
func NewTraceStore(cfg StoreConfig) (TraceStore, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite", "":
		path := cfg.Connection
		if path == "" {
			path = "mailpilot_traces.sqlite"
		}
		dialector = sqlite.Open(path)
	case "postgres":
		if cfg.Connection == "" {
			return nil, fmt.Errorf("postgres trace store requires a DSN")
		}
		dialector = postgres.Open(cfg.Connection)
	default:
		return nil, fmt.Errorf("unsupported trace store type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}
	return NewGORMTraceStore(db)
}
