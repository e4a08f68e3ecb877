package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-analyzer/pkg/config"
)

// Open connects to the configured driver. SQLite always gets its schema
// from the models; Postgres only when DB_AUTO_MIGRATE is set outside production.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := NewSQLiteDB(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		if log != nil {
			log.Info("✅ SQLite database opened", zap.String("path", cfg.Database.SQLitePath))
		}
		return db, nil
	case config.DriverPostgres, "":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := NewPostgresDB(cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if cfg.IsProduction() {
			_ = CloseDB(db)
			return nil, fmt.Errorf("DB_AUTO_MIGRATE is not allowed in production, use the migrate command")
		}
		if log != nil {
			log.Info("🔄 Running GORM AutoMigrate (development only)")
		}
		if err := AutoMigrate(db); err != nil {
			_ = CloseDB(db)
			return nil, err
		}
	}
	return db, nil
}

// AutoMigrate creates or updates the tables of all models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}
