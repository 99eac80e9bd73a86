package dto

// CreateBookingRequest is the public booking form.
type CreateBookingRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Date  string `json:"date"`
	// Time is the session start on the hour, "HH:00" in 24h form.
	Time  string `json:"time"`
	Notes string `json:"notes"`
}

// SlotRequest addresses a single slot for admin block and unblock calls.
type SlotRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// ListBookingsQuery bounds admin booking listings and exports.
type ListBookingsQuery struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Format string `form:"format"`
}

// CalendarQuery requests a calendar summary for an inclusive date range.
type CalendarQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}
