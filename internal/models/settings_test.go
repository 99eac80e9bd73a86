package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDaysOffAcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		DaysOff DaysOff `json:"daysOff"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"daysOff":["0", 6, "3"]}`), &payload))
	assert.Equal(t, DaysOff{0, 6, 3}, payload.DaysOff)
	assert.Equal(t, DaysOff{0, 3, 6}, payload.DaysOff.Normalize())
}

func TestDaysOffRejectsGarbage(t *testing.T) {
	var d DaysOff
	assert.Error(t, json.Unmarshal([]byte(`["sunday"]`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"0"`), &d))
}

func TestDaysOffDecodesMixedBSON(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: SettingsID},
		{Key: "startHour", Value: int32(8)},
		{Key: "endHour", Value: int32(19)},
		{Key: "daysOff", Value: bson.A{"0", int32(6), int64(3), 5.0}},
	})
	require.NoError(t, err)

	var settings Settings
	require.NoError(t, bson.Unmarshal(raw, &settings))
	assert.Equal(t, DaysOff{0, 6, 3, 5}, settings.DaysOff)
	assert.True(t, settings.IsDayOff(time.Sunday))
}

func TestDaysOffBSONRejectsGarbage(t *testing.T) {
	for _, value := range []interface{}{bson.A{"sunday"}, bson.A{1.5}, bson.A{true}, "0"} {
		raw, err := bson.Marshal(bson.D{{Key: "daysOff", Value: value}})
		require.NoError(t, err)

		var settings Settings
		assert.Error(t, bson.Unmarshal(raw, &settings), "%v", value)
	}
}

func TestDaysOffBSONRoundTripsAsNumbers(t *testing.T) {
	raw, err := bson.Marshal(Settings{DaysOff: DaysOff{0, 6}})
	require.NoError(t, err)

	var doc struct {
		DaysOff []int32 `bson:"daysOff"`
	}
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, []int32{0, 6}, doc.DaysOff)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 11, s.SlotCount())
	assert.True(t, s.IsDayOff(time.Sunday))
	assert.False(t, s.IsDayOff(time.Wednesday))
	assert.Equal(t, []int64{0}, s.DaysOff.Int64s())
}

func TestDaysOffNormalizeDropsDuplicates(t *testing.T) {
	assert.Equal(t, DaysOff{1, 5}, DaysOff{5, 1, 5}.Normalize())
}
