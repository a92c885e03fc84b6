package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the necessary database tables if they don't exist
func InitSchema(db *sql.DB) error {
	log.Info("Initializing pothole-service database schema...")

	reportsTableSQL := `
	CREATE TABLE IF NOT EXISTS reports(
		seq INT NOT NULL AUTO_INCREMENT,
		picture_url VARCHAR(512) NOT NULL DEFAULT '',
		description TEXT,
		severity ENUM('LOW', 'MEDIUM', 'HIGH'),
		status ENUM('SUBMITTED', 'PENDING', 'IN_PROGRESS', 'RESOLVED', 'REJECTED') NOT NULL DEFAULT 'SUBMITTED',
		latitude DOUBLE,
		longitude DOUBLE,
		author_id VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (seq),
		INDEX status_index (status),
		INDEX created_at_index (created_at),
		INDEX author_id_index (author_id),
		INDEX latitude_index (latitude),
		INDEX longitude_index (longitude)
	)`

	if _, err := db.Exec(reportsTableSQL); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	log.Info("Reports table created/verified")

	geometryTableSQL := `
	CREATE TABLE IF NOT EXISTS reports_geometry(
		seq INT NOT NULL,
		geom POINT NOT NULL SRID 4326,
		PRIMARY KEY (seq),
		SPATIAL INDEX(geom)
	)`

	if _, err := db.Exec(geometryTableSQL); err != nil {
		return fmt.Errorf("failed to create reports_geometry table: %w", err)
	}
	log.Info("Reports_geometry table created/verified")

	historyTableSQL := `
	CREATE TABLE IF NOT EXISTS report_status_history(
		id INT NOT NULL AUTO_INCREMENT,
		seq INT NOT NULL,
		old_status VARCHAR(32) NOT NULL,
		new_status VARCHAR(32) NOT NULL,
		changed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		INDEX seq_index (seq)
	)`

	if _, err := db.Exec(historyTableSQL); err != nil {
		return fmt.Errorf("failed to create report_status_history table: %w", err)
	}
	log.Info("Report_status_history table created/verified")

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Pothole-service database schema initialization completed")
	return nil
}

// runMigrations handles schema migrations for existing tables
func runMigrations(db *sql.DB) error {
	log.Info("Running database migrations...")

	// Migration 1: address was introduced after the first deployments
	if err := addAddressToReports(db); err != nil {
		return fmt.Errorf("failed to add address column to reports table: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}

func addAddressToReports(db *sql.DB) error {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		AND TABLE_NAME = 'reports'
		AND COLUMN_NAME = 'address'
	`).Scan(&count)

	if err != nil {
		log.Warnf("Could not check if address column exists: %v", err)
		return err
	}

	if count > 0 {
		log.Info("Address column already exists in reports table")
		return nil
	}

	if _, err := db.Exec(`ALTER TABLE reports ADD COLUMN address VARCHAR(512)`); err != nil {
		log.Warnf("Could not add address column to reports table: %v", err)
		return err
	}
	log.Info("Added address column to reports table")
	return nil
}
