package models

import "time"

// BlockedPlaceholderName marks the customer fields of an admin-created blocked slot.
const BlockedPlaceholderName = "BLOCKED"

// BookingRecord occupies one (date, time) slot, either a customer booking or an admin block.
type BookingRecord struct {
	ID        string    `db:"id" json:"id" bson:"_id"`
	Name      string    `db:"name" json:"name" bson:"name"`
	Email     string    `db:"email" json:"email" bson:"email"`
	Phone     string    `db:"phone" json:"phone" bson:"phone"`
	Date      string    `db:"date" json:"date" bson:"date"`
	Time      string    `db:"time" json:"time" bson:"time"`
	Notes     string    `db:"notes" json:"notes,omitempty" bson:"notes,omitempty"`
	IsBlocked bool      `db:"is_blocked" json:"isBlocked" bson:"isBlocked"`
	CreatedAt time.Time `db:"created_at" json:"createdAt" bson:"createdAt"`
}

// BookingFilter narrows booking listings to an inclusive date range.
type BookingFilter struct {
	From string
	To   string
}

// SlotStatus is the legacy per-time view served by the booked-slots endpoint.
type SlotStatus struct {
	IsBooked  bool `json:"isBooked"`
	IsBlocked bool `json:"isBlocked"`
}
