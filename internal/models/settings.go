package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// SettingsID is the key of the singleton settings row or document.
const SettingsID = 1

// Settings is the trainer's booking policy.
type Settings struct {
	StartHour              int       `json:"startHour" db:"start_hour" bson:"startHour" validate:"min=0,max=23"`
	EndHour                int       `json:"endHour" db:"end_hour" bson:"endHour" validate:"min=1,max=24,gtfield=StartHour"`
	SessionDurationMinutes int       `json:"sessionDuration" db:"session_duration" bson:"sessionDuration" validate:"min=15,max=240"`
	DaysOff                DaysOff   `json:"daysOff" db:"-" bson:"daysOff" validate:"dive,min=0,max=6"`
	AdvanceBookingDays     int       `json:"advanceBookingDays" db:"advance_booking_days" bson:"advanceBookingDays" validate:"min=1,max=365"`
	MinAdvanceHours        int       `json:"minAdvanceHours" db:"min_advance_hours" bson:"minAdvanceHours" validate:"min=0,max=72"`
	UpdatedAt              time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// DefaultSettings returns the policy used until an admin saves their own.
func DefaultSettings() Settings {
	return Settings{
		StartHour:              8,
		EndHour:                19,
		SessionDurationMinutes: 60,
		DaysOff:                DaysOff{0},
		AdvanceBookingDays:     30,
		MinAdvanceHours:        24,
	}
}

// IsDayOff reports whether weekday is excluded from booking.
func (s Settings) IsDayOff(weekday time.Weekday) bool {
	return s.DaysOff.Contains(int(weekday))
}

// SlotCount is the number of bookable hours per working day.
func (s Settings) SlotCount() int {
	if s.EndHour <= s.StartHour {
		return 0
	}
	return s.EndHour - s.StartHour
}

// DaysOff is a set of weekday indices, Sunday=0. JSON input may use numbers or numeric
// strings.
type DaysOff []int

// UnmarshalJSON accepts [0, 6] as well as ["0", "6"].
func (d *DaysOff) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("daysOff must be an array: %w", err)
	}
	out := make(DaysOff, 0, len(raw))
	for _, item := range raw {
		var n int
		if err := json.Unmarshal(item, &n); err == nil {
			out = append(out, n)
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return fmt.Errorf("daysOff entries must be weekday numbers")
		}
		n, err := parseWeekday(s)
		if err != nil {
			return err
		}
		out = append(out, n)
	}
	*d = out
	return nil
}

// UnmarshalBSONValue accepts arrays of int32, int64, whole doubles or numeric strings, so
// documents storing daysOff as ["0", "6"] decode the same as [0, 6].
func (d *DaysOff) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*d = nil
		return nil
	case bsontype.Array:
	default:
		return fmt.Errorf("daysOff must be an array, got %s", t)
	}

	values, err := bsoncore.Array(data).Values()
	if err != nil {
		return fmt.Errorf("decode daysOff: %w", err)
	}
	out := make(DaysOff, 0, len(values))
	for _, v := range values {
		var n int
		switch v.Type {
		case bsontype.Int32:
			n = int(v.Int32())
		case bsontype.Int64:
			n = int(v.Int64())
		case bsontype.Double:
			f := v.Double()
			if f != math.Trunc(f) {
				return fmt.Errorf("daysOff entry %v is not a weekday number", f)
			}
			n = int(f)
		case bsontype.String:
			n, err = parseWeekday(v.StringValue())
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("daysOff entries must be weekday numbers, got %s", v.Type)
		}
		out = append(out, n)
	}
	*d = out
	return nil
}

func parseWeekday(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("daysOff entry %q is not a weekday number", raw)
	}
	return n, nil
}

// Contains reports whether weekday is in the set.
func (d DaysOff) Contains(weekday int) bool {
	for _, v := range d {
		if v == weekday {
			return true
		}
	}
	return false
}

// Normalize returns a sorted copy without duplicates.
func (d DaysOff) Normalize() DaysOff {
	seen := make(map[int]struct{}, len(d))
	out := make(DaysOff, 0, len(d))
	for _, v := range d {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Int64s converts the set for array columns.
func (d DaysOff) Int64s() []int64 {
	out := make([]int64, len(d))
	for i, v := range d {
		out[i] = int64(v)
	}
	return out
}
