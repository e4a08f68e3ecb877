package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
)

// Models lists every table owned by the service, in dependency order
var Models = []interface{}{
	&entities.Meeting{},
	&entities.Participant{},
	&entities.AgendaItem{},
	&entities.Transcript{},
	&entities.AnalysisResult{},
}

// NewSQLiteDB opens a SQLite database and creates the schema from the models.
// Used for local runs of the CLI and for tests; Postgres uses the SQL migrations.
func NewSQLiteDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// a single connection keeps ":memory:" databases alive and serializes writers
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return db, nil
}
