package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/noah-isme/trainer-booking-api/internal/models"
	"github.com/noah-isme/trainer-booking-api/pkg/config"
	"github.com/noah-isme/trainer-booking-api/pkg/database"
)

// BookingStore persists slot occupancy. At most one record exists per (date, time).
type BookingStore interface {
	FindBySlot(ctx context.Context, date, slotTime string) (*models.BookingRecord, error)
	ListByDate(ctx context.Context, date string) ([]models.BookingRecord, error)
	ListRange(ctx context.Context, filter models.BookingFilter) ([]models.BookingRecord, error)
	Create(ctx context.Context, record *models.BookingRecord) error
	DeleteByID(ctx context.Context, id string) error
	DeleteBlocked(ctx context.Context, date, slotTime string) error
}

// SettingsStore persists the singleton settings.
type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	InitDefaults(ctx context.Context, defaults models.Settings) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

// AdminStore persists admin principals.
type AdminStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
	Count(ctx context.Context) (int64, error)
}

// Stores bundles one backend's repositories.
type Stores struct {
	Driver   string
	Bookings BookingStore
	Settings SettingsStore
	Admins   AdminStore

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks the backend is reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Stores) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// NewPostgresStores wires the relational repositories around db.
func NewPostgresStores(db *sqlx.DB) *Stores {
	return &Stores{
		Driver:   config.StoreDriverPostgres,
		Bookings: NewPostgresBookingRepository(db),
		Settings: NewPostgresSettingsRepository(db),
		Admins:   NewPostgresAdminRepository(db),
		ping:     db.PingContext,
		close:    func(context.Context) error { return db.Close() },
	}
}

// NewMongoStores wires the document repositories around db.
func NewMongoStores(client *mongo.Client, db *mongo.Database) *Stores {
	return &Stores{
		Driver:   config.StoreDriverMongo,
		Bookings: NewMongoBookingRepository(db),
		Settings: NewMongoSettingsRepository(db),
		Admins:   NewMongoAdminRepository(db),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: client.Disconnect,
	}
}

// Open connects to the backend selected by STORE_DRIVER and prepares its schema.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := EnsurePostgresSchema(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
			logger.Info("postgres schema ensured")
		}
		return NewPostgresStores(db), nil
	case config.StoreDriverMongo:
		client, db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.Info("mongo indexes ensured", zap.String("database", db.Name()))
		return NewMongoStores(client, db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
