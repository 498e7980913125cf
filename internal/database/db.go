package database

import (
	"fmt"
	"time"

	"bistro/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver (lib/pq)
	_ "github.com/mattn/go-sqlite3"              // SQLite driver
)

// Open connects to the database for the given gorm dialect ("sqlite3" or
// "postgres") and configures the connection pool.
func Open(driver, dsn string, logMode bool) (*gorm.DB, error) {
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.LogMode(logMode)

	if driver == "sqlite3" {
		// SQLite serialises writers; a single connection also keeps
		// ":memory:" databases from splitting across the pool.
		db.DB().SetMaxOpenConns(1)
	} else {
		db.DB().SetMaxIdleConns(10)
		db.DB().SetMaxOpenConns(100)
	}
	db.DB().SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate creates or updates every table the service uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.MenuItem{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderItem{},
		&models.User{},
		&models.Conversation{},
		&models.TranscriptEntry{},
	).Error
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// OpenInMemory returns a migrated in-memory SQLite database
func OpenInMemory() (*gorm.DB, error) {
	db, err := Open("sqlite3", ":memory:", false)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// WithTransaction runs fn inside a transaction, rolling back on error or panic
func WithTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
