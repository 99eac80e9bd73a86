package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/trainer-booking-api/internal/models"
)

type settingsRow struct {
	StartHour          int           `db:"start_hour"`
	EndHour            int           `db:"end_hour"`
	SessionDuration    int           `db:"session_duration"`
	DaysOff            pq.Int64Array `db:"days_off"`
	AdvanceBookingDays int           `db:"advance_booking_days"`
	MinAdvanceHours    int           `db:"min_advance_hours"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

func (r settingsRow) toModel() *models.Settings {
	days := make(models.DaysOff, len(r.DaysOff))
	for i, d := range r.DaysOff {
		days[i] = int(d)
	}
	return &models.Settings{
		StartHour:              r.StartHour,
		EndHour:                r.EndHour,
		SessionDurationMinutes: r.SessionDuration,
		DaysOff:                days,
		AdvanceBookingDays:     r.AdvanceBookingDays,
		MinAdvanceHours:        r.MinAdvanceHours,
		UpdatedAt:              r.UpdatedAt,
	}
}

// PostgresSettingsRepository keeps the settings in a single row with id 1.
type PostgresSettingsRepository struct {
	db *sqlx.DB
}

// NewPostgresSettingsRepository constructs the repository.
func NewPostgresSettingsRepository(db *sqlx.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

// Get loads the settings row.
func (r *PostgresSettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	const query = `SELECT start_hour, end_hour, session_duration, days_off, advance_booking_days, min_advance_hours, updated_at FROM settings WHERE id = $1`
	var row settingsRow
	if err := r.db.GetContext(ctx, &row, query, models.SettingsID); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return row.toModel(), nil
}

// InitDefaults writes defaults unless a row already exists and returns whatever is stored.
func (r *PostgresSettingsRepository) InitDefaults(ctx context.Context, defaults models.Settings) (*models.Settings, error) {
	const query = `INSERT INTO settings (id, start_hour, end_hour, session_duration, days_off, advance_booking_days, min_advance_hours, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING`
	if defaults.UpdatedAt.IsZero() {
		defaults.UpdatedAt = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx, query, models.SettingsID, defaults.StartHour, defaults.EndHour,
		defaults.SessionDurationMinutes, pq.Int64Array(defaults.DaysOff.Int64s()), defaults.AdvanceBookingDays,
		defaults.MinAdvanceHours, defaults.UpdatedAt); err != nil {
		return nil, fmt.Errorf("init settings: %w", err)
	}
	return r.Get(ctx)
}

// Save upserts the settings row.
func (r *PostgresSettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	const query = `INSERT INTO settings (id, start_hour, end_hour, session_duration, days_off, advance_booking_days, min_advance_hours, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET start_hour = EXCLUDED.start_hour, end_hour = EXCLUDED.end_hour,
		session_duration = EXCLUDED.session_duration, days_off = EXCLUDED.days_off,
		advance_booking_days = EXCLUDED.advance_booking_days, min_advance_hours = EXCLUDED.min_advance_hours,
		updated_at = EXCLUDED.updated_at`
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx, query, models.SettingsID, settings.StartHour, settings.EndHour,
		settings.SessionDurationMinutes, pq.Int64Array(settings.DaysOff.Int64s()), settings.AdvanceBookingDays,
		settings.MinAdvanceHours, settings.UpdatedAt); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
