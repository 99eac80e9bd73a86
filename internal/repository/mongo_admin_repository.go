package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/trainer-booking-api/internal/models"
)

// MongoAdminRepository stores admin principals in the admins collection.
type MongoAdminRepository struct {
	coll *mongo.Collection
}

// NewMongoAdminRepository constructs the repository.
func NewMongoAdminRepository(db *mongo.Database) *MongoAdminRepository {
	return &MongoAdminRepository{coll: db.Collection(adminsCollection)}
}

// FindByUsername returns an admin by username.
func (r *MongoAdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"username": username}, "find admin by username")
}

// FindByID returns an admin by identifier.
func (r *MongoAdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "find admin by id")
}

func (r *MongoAdminRepository) findOne(ctx context.Context, filter bson.M, op string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.coll.FindOne(ctx, filter).Decode(&admin); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &admin, nil
}

// Create inserts a new admin.
func (r *MongoAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, admin); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// Count returns the number of admins.
func (r *MongoAdminRepository) Count(ctx context.Context) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return total, nil
}
