package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/trainer-booking-api/internal/models"
)

var settingsCols = []string{"start_hour", "end_hour", "session_duration", "days_off", "advance_booking_days", "min_advance_hours", "updated_at"}

func TestPostgresSettingsGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostgresSettingsRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM settings WHERE id = $1")).
		WithArgs(models.SettingsID).
		WillReturnRows(sqlmock.NewRows(settingsCols).AddRow(9, 17, 45, "{0,6}", 14, 12, now))

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, settings.StartHour)
	assert.Equal(t, 17, settings.EndHour)
	assert.Equal(t, 45, settings.SessionDurationMinutes)
	assert.Equal(t, models.DaysOff{0, 6}, settings.DaysOff)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSettingsGetMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostgresSettingsRepository(db)

	mock.ExpectQuery("FROM settings").WillReturnRows(sqlmock.NewRows(settingsCols))

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresSettingsInitDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostgresSettingsRepository(db)

	now := time.Now()
	mock.ExpectExec("INSERT INTO settings .* ON CONFLICT \\(id\\) DO NOTHING").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM settings").
		WillReturnRows(sqlmock.NewRows(settingsCols).AddRow(8, 19, 60, "{0}", 30, 24, now))

	settings, err := repo.InitDefaults(context.Background(), models.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, models.DaysOff{0}, settings.DaysOff)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSettingsSave(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostgresSettingsRepository(db)

	mock.ExpectExec("INSERT INTO settings .* ON CONFLICT \\(id\\) DO UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))

	s := models.DefaultSettings()
	require.NoError(t, repo.Save(context.Background(), &s))
	assert.False(t, s.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
