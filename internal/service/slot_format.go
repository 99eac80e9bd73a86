package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/noah-isme/trainer-booking-api/pkg/errors"
)

const dateLayout = "2006-01-02"

var (
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern  = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
)

// parseDate accepts strict YYYY-MM-DD calendar dates only.
func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	if !datePattern.MatchString(raw) {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// parseSlotTime validates HH:MM and returns the hour. Slots start on the hour, so minutes must be 00.
func parseSlotTime(raw string) (int, bool) {
	m := timePattern.FindStringSubmatch(raw)
	if m == nil || m[2] != "00" {
		return 0, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return hour, true
}

func formatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

func validEmail(raw string) bool {
	return emailPattern.MatchString(raw)
}

// slotKey validates a date/time pair and returns the canonical stored forms.
func slotKey(date, slotTime string, loc *time.Location) (time.Time, int, error) {
	date = strings.TrimSpace(date)
	slotTime = strings.TrimSpace(slotTime)

	var missing []string
	if date == "" {
		missing = append(missing, "date is required")
	}
	if slotTime == "" {
		missing = append(missing, "time is required")
	}
	if len(missing) > 0 {
		return time.Time{}, 0, appErrors.WithDetails(appErrors.ErrMissingField, "", missing)
	}

	var invalid []string
	day, ok := parseDate(date, loc)
	if !ok {
		invalid = append(invalid, "date must be a valid YYYY-MM-DD date")
	}
	hour, ok := parseSlotTime(slotTime)
	if !ok {
		invalid = append(invalid, "time must be HH:00 in 24-hour format")
	}
	if len(invalid) > 0 {
		return time.Time{}, 0, appErrors.WithDetails(appErrors.ErrInvalidFormat, "", invalid)
	}
	return day, hour, nil
}
