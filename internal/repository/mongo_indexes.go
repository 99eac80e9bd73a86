package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	bookingsCollection = "bookings"
	settingsCollection = "settings"
	adminsCollection   = "admins"
)

// EnsureMongoIndexes creates the unique indexes the booking rules depend on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	bookingIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_date_time"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "isBlocked", Value: 1}},
			Options: options.Index().SetName("date_blocked_idx"),
		},
	}
	if _, err := db.Collection(bookingsCollection).Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("create booking indexes: %w", err)
	}

	adminIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_username"),
	}
	if _, err := db.Collection(adminsCollection).Indexes().CreateOne(ctx, adminIndex); err != nil {
		return fmt.Errorf("create admin indexes: %w", err)
	}
	return nil
}
