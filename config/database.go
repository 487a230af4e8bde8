package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studydeck/studydeck-api/models"
)

// ConnectRemote opens the authoritative remote database. Callers treat a nil
// return as "remote unavailable" and fall back to local-only persistence.
func ConnectRemote(dbURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect remote database: %w", err)
	}

	if err := db.AutoMigrate(&models.SavedSet{}); err != nil {
		return nil, fmt.Errorf("migrate remote database: %w", err)
	}

	return db, nil
}

// ConnectLocal opens the always-available local store backing both the
// fallback record store and the key/value state blobs.
func ConnectLocal(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect local database: %w", err)
	}

	if err := db.AutoMigrate(&models.SavedSet{}); err != nil {
		return nil, fmt.Errorf("migrate local database: %w", err)
	}

	return db, nil
}
