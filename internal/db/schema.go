package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(50) NOT NULL DEFAULT '',
		role VARCHAR(50) NOT NULL DEFAULT 'customer',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		pickup_location VARCHAR(500) NOT NULL,
		drop_location VARCHAR(500) NOT NULL,
		scheduled_at DATETIME NULL,
		distance_km DOUBLE NULL,
		estimated_fare DOUBLE NULL,
		total_amount DOUBLE NOT NULL DEFAULT 0,
		car_model VARCHAR(255) NULL,
		actual_km DOUBLE NULL,
		extra_km DOUBLE NULL,
		extra_charge DOUBLE NULL,
		cancellation_reason TEXT NULL,
		taxi_assign_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		status VARCHAR(30) NOT NULL DEFAULT 'PENDING_PAYMENT',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_bookings_user (user_id),
		KEY idx_bookings_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS payments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		amount DOUBLE NOT NULL,
		currency VARCHAR(10) NOT NULL DEFAULT 'INR',
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		provider VARCHAR(50) NOT NULL DEFAULT 'unknown',
		provider_txn_id VARCHAR(255) NULL,
		remaining_amount DOUBLE NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_payments_booking (booking_id),
		KEY idx_payments_txn (provider_txn_id, status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS taxi_assignments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		driver_name VARCHAR(255) NOT NULL,
		driver_number VARCHAR(50) NOT NULL,
		cab_number VARCHAR(50) NOT NULL,
		cab_name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_assignments_booking (booking_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS fare_adjustments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		type VARCHAR(20) NOT NULL,
		amount DOUBLE NOT NULL,
		description VARCHAR(500) NOT NULL DEFAULT '',
		admin_id BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_fare_adjustments_booking (booking_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS booking_notes (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		admin_id BIGINT NOT NULL DEFAULT 0,
		content TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_booking_notes_booking (booking_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		entity_type VARCHAR(50) NOT NULL,
		entity_id BIGINT NOT NULL,
		action VARCHAR(50) NOT NULL,
		old_value TEXT NULL,
		new_value TEXT NULL,
		admin_id BIGINT NOT NULL DEFAULT 0,
		reason TEXT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_audit_entity (entity_type, entity_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS fleet_vehicles (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		seats INT NOT NULL,
		base_price_per_km DOUBLE NOT NULL,
		category VARCHAR(100) NOT NULL,
		description TEXT NULL,
		image_url VARCHAR(500) NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
}

// EnsureSchema creates all tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
