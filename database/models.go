// Package database provides database connection management for the tonpulse
// token tracking backend.
//
// This package includes:
//   - Database connection management using GORM and PostgreSQL
//   - Schema migration for sentiment, vote, watchlist and alert tables
//   - Error taxonomy shared by all store adapters
//
// Data Models:
//
//	All persisted entities (Sentiment, Vote, WatchlistEntry, Alert,
//	AlertHistoryEntry) are defined in the models_pkg package to avoid
//	circular import dependencies between the per-domain repositories.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "tonpulse/database/models_pkg"
)

// Database holds the GORM database connection and provides access to the
// underlying DB instance. It serves as the central connection point for all
// store adapters in the application.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes database connection using GORM
func Connect(host string, port int, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Silent logging for production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// InitSchema performs auto-migration for all persisted entities
func (d *Database) InitSchema() error {
	err := d.db.AutoMigrate(
		&models.Sentiment{},
		&models.Vote{},
		&models.WatchlistEntry{},
		&models.Alert{},
		&models.AlertHistoryEntry{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
