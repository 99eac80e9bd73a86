package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/trainer-booking-api/internal/models"
)

const bookingColumns = `id, name, email, phone, date, time, notes, is_blocked, created_at`

// PostgresBookingRepository stores bookings in the bookings table.
type PostgresBookingRepository struct {
	db *sqlx.DB
}

// NewPostgresBookingRepository constructs the repository.
func NewPostgresBookingRepository(db *sqlx.DB) *PostgresBookingRepository {
	return &PostgresBookingRepository{db: db}
}

// FindBySlot returns the record occupying (date, time).
func (r *PostgresBookingRepository) FindBySlot(ctx context.Context, date, slotTime string) (*models.BookingRecord, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE date = $1 AND time = $2 LIMIT 1`
	var record models.BookingRecord
	if err := r.db.GetContext(ctx, &record, query, date, slotTime); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find booking by slot: %w", err)
	}
	return &record, nil
}

// ListByDate returns every record on date ordered by time.
func (r *PostgresBookingRepository) ListByDate(ctx context.Context, date string) ([]models.BookingRecord, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE date = $1 ORDER BY time ASC`
	var records []models.BookingRecord
	if err := r.db.SelectContext(ctx, &records, query, date); err != nil {
		return nil, fmt.Errorf("list bookings by date: %w", err)
	}
	return records, nil
}

// ListRange returns records within the optional inclusive date bounds, sorted by date then time.
func (r *PostgresBookingRepository) ListRange(ctx context.Context, filter models.BookingFilter) ([]models.BookingRecord, error) {
	var conditions []string
	var args []interface{}
	if filter.From != "" {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, time ASC"

	var records []models.BookingRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return records, nil
}

// Create inserts a record. A second record for the same slot fails with ErrDuplicate.
func (r *PostgresBookingRepository) Create(ctx context.Context, record *models.BookingRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO bookings (` + bookingColumns + `) VALUES (:id, :name, :email, :phone, :date, :time, :notes, :is_blocked, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// DeleteByID removes any record by id.
func (r *PostgresBookingRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM bookings WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return requireAffected(res)
}

// DeleteBlocked removes the blocked placeholder at (date, time). Customer bookings are never touched.
func (r *PostgresBookingRepository) DeleteBlocked(ctx context.Context, date, slotTime string) error {
	const query = `DELETE FROM bookings WHERE date = $1 AND time = $2 AND is_blocked = TRUE`
	res, err := r.db.ExecContext(ctx, query, date, slotTime)
	if err != nil {
		return fmt.Errorf("delete blocked slot: %w", err)
	}
	return requireAffected(res)
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func requireAffected(res rowsAffected) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
