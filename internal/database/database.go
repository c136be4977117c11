package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"propval/server/internal/models"
)

// Database wraps the sqlite store holding the comparable cache and the
// valuation history. Both are shared across concurrent valuation requests;
// cache writes are idempotent upserts so racing writers are safe.
type Database struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewDatabase(dbPath string, logger *logrus.Logger) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{db: db, logger: logger}, nil
}

func (d *Database) RunMigrations() error {
	return d.db.AutoMigrate(
		&comparableCacheRow{},
		&models.ValuationHistoryEntry{},
	)
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
