package dto

import "github.com/noah-isme/trainer-booking-api/internal/models"

// UpdateSettingsRequest is a partial settings update. Nil fields keep their current value.
type UpdateSettingsRequest struct {
	StartHour              *int            `json:"startHour"`
	EndHour                *int            `json:"endHour"`
	SessionDurationMinutes *int            `json:"sessionDuration"`
	DaysOff                *models.DaysOff `json:"daysOff"`
	AdvanceBookingDays     *int            `json:"advanceBookingDays"`
	MinAdvanceHours        *int            `json:"minAdvanceHours"`
}

// Apply overlays the request on current and returns the merged settings.
func (r UpdateSettingsRequest) Apply(current models.Settings) models.Settings {
	merged := current
	if r.StartHour != nil {
		merged.StartHour = *r.StartHour
	}
	if r.EndHour != nil {
		merged.EndHour = *r.EndHour
	}
	if r.SessionDurationMinutes != nil {
		merged.SessionDurationMinutes = *r.SessionDurationMinutes
	}
	if r.DaysOff != nil {
		merged.DaysOff = append(models.DaysOff(nil), (*r.DaysOff)...)
	}
	if r.AdvanceBookingDays != nil {
		merged.AdvanceBookingDays = *r.AdvanceBookingDays
	}
	if r.MinAdvanceHours != nil {
		merged.MinAdvanceHours = *r.MinAdvanceHours
	}
	return merged
}

// Empty reports whether the request changes nothing.
func (r UpdateSettingsRequest) Empty() bool {
	return r.StartHour == nil && r.EndHour == nil && r.SessionDurationMinutes == nil &&
		r.DaysOff == nil && r.AdvanceBookingDays == nil && r.MinAdvanceHours == nil
}
