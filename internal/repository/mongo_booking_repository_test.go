package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/noah-isme/trainer-booking-api/internal/models"
)

func TestMongoBookingRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		record := &models.BookingRecord{Name: "Jane", Date: "2026-10-21", Time: "17:00"}
		require.NoError(mt, repo.Create(context.Background(), record))
		assert.NotEmpty(mt, record.ID)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: bookings index: unique_date_time",
		}))

		err := repo.Create(context.Background(), &models.BookingRecord{Date: "2026-10-21", Time: "17:00"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("find by slot", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB)
		ns := mt.DB.Name() + "." + bookingsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "b1"},
			{Key: "name", Value: models.BlockedPlaceholderName},
			{Key: "date", Value: "2026-10-21"},
			{Key: "time", Value: "18:00"},
			{Key: "isBlocked", Value: true},
			{Key: "createdAt", Value: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)},
		}))

		record, err := repo.FindBySlot(context.Background(), "2026-10-21", "18:00")
		require.NoError(mt, err)
		assert.Equal(mt, "b1", record.ID)
		assert.True(mt, record.IsBlocked)
	})

	mt.Run("find by slot missing", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB)
		ns := mt.DB.Name() + "." + bookingsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindBySlot(context.Background(), "2026-10-21", "09:00")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("list by date", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB)
		ns := mt.DB.Name() + "." + bookingsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "b1"}, {Key: "date", Value: "2026-10-21"}, {Key: "time", Value: "09:00"}},
			bson.D{{Key: "_id", Value: "b2"}, {Key: "date", Value: "2026-10-21"}, {Key: "time", Value: "10:00"}, {Key: "isBlocked", Value: true}},
		))

		records, err := repo.ListByDate(context.Background(), "2026-10-21")
		require.NoError(mt, err)
		require.Len(mt, records, 2)
		assert.Equal(mt, "10:00", records[1].Time)
		assert.True(mt, records[1].IsBlocked)
	})

	mt.Run("delete blocked missing", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeleteBlocked(context.Background(), "2026-10-21", "18:00")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete by id", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, repo.DeleteByID(context.Background(), "b1"))
	})
}
