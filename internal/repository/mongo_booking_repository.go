package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/trainer-booking-api/internal/models"
)

// MongoBookingRepository stores bookings in the bookings collection.
type MongoBookingRepository struct {
	coll *mongo.Collection
}

// NewMongoBookingRepository constructs the repository.
func NewMongoBookingRepository(db *mongo.Database) *MongoBookingRepository {
	return &MongoBookingRepository{coll: db.Collection(bookingsCollection)}
}

// FindBySlot returns the record occupying (date, time).
func (r *MongoBookingRepository) FindBySlot(ctx context.Context, date, slotTime string) (*models.BookingRecord, error) {
	var record models.BookingRecord
	err := r.coll.FindOne(ctx, bson.M{"date": date, "time": slotTime}).Decode(&record)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find booking by slot: %w", err)
	}
	return &record, nil
}

// ListByDate returns every record on date ordered by time.
func (r *MongoBookingRepository) ListByDate(ctx context.Context, date string) ([]models.BookingRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})
	return r.find(ctx, bson.M{"date": date}, opts, "list bookings by date")
}

// ListRange returns records within the optional inclusive date bounds, sorted by date then time.
func (r *MongoBookingRepository) ListRange(ctx context.Context, filter models.BookingFilter) ([]models.BookingRecord, error) {
	query := bson.M{}
	bounds := bson.M{}
	if filter.From != "" {
		bounds["$gte"] = filter.From
	}
	if filter.To != "" {
		bounds["$lte"] = filter.To
	}
	if len(bounds) > 0 {
		query["date"] = bounds
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	return r.find(ctx, query, opts, "list bookings")
}

func (r *MongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions, op string) ([]models.BookingRecord, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	records := []models.BookingRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return records, nil
}

// Create inserts a record. The unique date+time index turns a second insert into ErrDuplicate.
func (r *MongoBookingRepository) Create(ctx context.Context, record *models.BookingRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// DeleteByID removes any record by id.
func (r *MongoBookingRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBlocked removes the blocked placeholder at (date, time). Customer bookings are never touched.
func (r *MongoBookingRepository) DeleteBlocked(ctx context.Context, date, slotTime string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"date": date, "time": slotTime, "isBlocked": true})
	if err != nil {
		return fmt.Errorf("delete blocked slot: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
