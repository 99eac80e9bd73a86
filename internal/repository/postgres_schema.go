package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		is_blocked BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT bookings_date_time_key UNIQUE (date, time)
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		start_hour INTEGER NOT NULL,
		end_hour INTEGER NOT NULL,
		session_duration INTEGER NOT NULL,
		days_off INTEGER[] NOT NULL DEFAULT '{}',
		advance_booking_days INTEGER NOT NULL,
		min_advance_hours INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT settings_hours_check CHECK (start_hour < end_hour)
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsurePostgresSchema creates the tables when they do not exist yet.
func EnsurePostgresSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range postgresSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure postgres schema: %w", err)
		}
	}
	return nil
}
