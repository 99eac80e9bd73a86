package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/trainer-booking-api/internal/models"
)

// PostgresAdminRepository provides database access for admin principals.
type PostgresAdminRepository struct {
	db *sqlx.DB
}

// NewPostgresAdminRepository constructs the repository.
func NewPostgresAdminRepository(db *sqlx.DB) *PostgresAdminRepository {
	return &PostgresAdminRepository{db: db}
}

// FindByUsername returns an admin by username.
func (r *PostgresAdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	const query = `SELECT id, username, password_hash, created_at FROM admins WHERE username = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, username); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find admin by username: %w", err)
	}
	return &admin, nil
}

// FindByID returns an admin by identifier.
func (r *PostgresAdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	const query = `SELECT id, username, password_hash, created_at FROM admins WHERE id = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return &admin, nil
}

// Create inserts a new admin.
func (r *PostgresAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO admins (id, username, password_hash, created_at) VALUES (:id, :username, :password_hash, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// Count returns the number of admins.
func (r *PostgresAdminRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM admins`
	var total int64
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return total, nil
}
