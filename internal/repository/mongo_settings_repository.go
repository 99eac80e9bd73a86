package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/trainer-booking-api/internal/models"
)

// MongoSettingsRepository keeps the settings in a single document with _id 1.
type MongoSettingsRepository struct {
	coll *mongo.Collection
}

// NewMongoSettingsRepository constructs the repository.
func NewMongoSettingsRepository(db *mongo.Database) *MongoSettingsRepository {
	return &MongoSettingsRepository{coll: db.Collection(settingsCollection)}
}

// Get loads the settings document.
func (r *MongoSettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if err := r.coll.FindOne(ctx, bson.M{"_id": models.SettingsID}).Decode(&settings); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &settings, nil
}

// InitDefaults writes defaults unless a document already exists and returns whatever is stored.
func (r *MongoSettingsRepository) InitDefaults(ctx context.Context, defaults models.Settings) (*models.Settings, error) {
	if defaults.UpdatedAt.IsZero() {
		defaults.UpdatedAt = time.Now().UTC()
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{"$setOnInsert": defaults}

	var stored models.Settings
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": models.SettingsID}, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("init settings: %w", err)
	}
	return &stored, nil
}

// Save replaces the settings document, creating it when missing.
func (r *MongoSettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now().UTC()
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": models.SettingsID}, settings, opts); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
