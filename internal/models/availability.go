package models

// SlotState describes whether a slot may still be booked.
type SlotState string

const (
	SlotOpen    SlotState = "open"
	SlotBooked  SlotState = "booked"
	SlotBlocked SlotState = "blocked"
)

// Slot is one bookable hour on a date. Slots are derived from settings and never stored.
type Slot struct {
	Hour  int       `json:"hour"`
	Time  string    `json:"time"`
	State SlotState `json:"state"`
}

// DayAvailability is the slot map for a single date. Slots is empty on a day off.
type DayAvailability struct {
	Date        string `json:"date"`
	DayOff      bool   `json:"dayOff"`
	FullyBooked bool   `json:"fullyBooked"`
	Slots       []Slot `json:"slots"`
}

// CalendarDay summarises one date for calendar greying.
type CalendarDay struct {
	Date        string `json:"date"`
	DayOff      bool   `json:"dayOff"`
	FullyBooked bool   `json:"fullyBooked"`
	OpenSlots   int    `json:"openSlots"`
}
