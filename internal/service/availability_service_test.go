package service

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/trainer-booking-api/internal/dto"
	"github.com/noah-isme/trainer-booking-api/internal/models"
	appErrors "github.com/noah-isme/trainer-booking-api/pkg/errors"
)

// Monday 2026-10-19 10:00 UTC.
var fixedNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func newEngine(repo *memoryBookingRepo, settings models.Settings, notifier bookingNotifier) *AvailabilityService {
	svc := NewAvailabilityService(repo, staticSettings{settings: settings}, notifier, nil, nil, AvailabilityConfig{StoreTimeout: time.Second})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func bookingRequest(date, slotTime string) dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Phone: "+1 555 0100",
		Date:  date,
		Time:  slotTime,
	}
}

func assertCode(t *testing.T, want *appErrors.Error, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want.Code, appErrors.FromError(err).Code)
}

func TestWorkedExample(t *testing.T) {
	repo := newMemoryBookingRepo()
	notifier := &notifierStub{}
	svc := newEngine(repo, models.DefaultSettings(), notifier)
	ctx := context.Background()

	_, err := svc.ValidateAndCreateBooking(ctx, bookingRequest("2026-10-25", "17:00"))
	assertCode(t, appErrors.ErrDayOff, err)

	record, err := svc.ValidateAndCreateBooking(ctx, bookingRequest("2026-10-21", "17:00"))
	require.NoError(t, err)
	assert.False(t, record.IsBlocked)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "17:00", record.Time)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, record.ID, notifier.calls[0].ID)

	_, err = svc.ValidateAndCreateBooking(ctx, bookingRequest("2026-10-21", "17:00"))
	assertCode(t, appErrors.ErrSlotTaken, err)

	blocked, created, err := svc.BlockSlot(ctx, dto.SlotRequest{Date: "2026-10-21", Time: "18:00"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, blocked.IsBlocked)
	assert.Equal(t, models.BlockedPlaceholderName, blocked.Name)

	require.NoError(t, svc.UnblockSlot(ctx, dto.SlotRequest{Date: "2026-10-21", Time: "18:00"}))

	err = svc.UnblockSlot(ctx, dto.SlotRequest{Date: "2026-10-21", Time: "18:00"})
	assertCode(t, appErrors.ErrNotFound, err)
	assert.Equal(t, 1, repo.count())
}

func TestBookingAdvanceWindowBoundaries(t *testing.T) {
	ctx := context.Background()
	settings := models.DefaultSettings()

	cases := []struct {
		name string
		date string
		time string
		want *appErrors.Error
	}{
		{"exactly min advance", "2026-10-20", "10:00", nil},
		{"one hour short of min advance", "2026-10-20", "09:00", appErrors.ErrTooSoon},
		{"exactly max advance", "2026-11-18", "10:00", nil},
		{"one day past max advance", "2026-11-19", "10:00", appErrors.ErrTooFarAhead},
		{"in the past", "2026-10-12", "10:00", appErrors.ErrTooSoon},
		{"before opening", "2026-10-21", "07:00", appErrors.ErrOutsideHours},
		{"at closing hour", "2026-10-21", "19:00", appErrors.ErrOutsideHours},
		{"last slot", "2026-10-21", "18:00", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newEngine(newMemoryBookingRepo(), settings, nil)
			_, err := svc.ValidateAndCreateBooking(ctx, bookingRequest(tc.date, tc.time))
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assertCode(t, tc.want, err)
		})
	}
}

func TestPastBookingRejectedWithZeroMinAdvance(t *testing.T) {
	settings := models.DefaultSettings()
	settings.MinAdvanceHours = 0
	svc := newEngine(newMemoryBookingRepo(), settings, nil)

	_, err := svc.ValidateAndCreateBooking(context.Background(), bookingRequest("2026-10-19", "09:00"))
	assertCode(t, appErrors.ErrTooSoon, err)

	_, err = svc.ValidateAndCreateBooking(context.Background(), bookingRequest("2026-10-19", "10:00"))
	assert.NoError(t, err)
}

func TestValidationOrderSlotTakenFirst(t *testing.T) {
	repo := newMemoryBookingRepo(models.BookingRecord{Date: "2026-10-19", Time: "12:00", Name: "Early"})
	svc := newEngine(repo, models.DefaultSettings(), nil)

	_, err := svc.ValidateAndCreateBooking(context.Background(), bookingRequest("2026-10-19", "12:00"))
	assertCode(t, appErrors.ErrSlotTaken, err)
}

func TestValidationOrderWindowBeforeDayOff(t *testing.T) {
	svc := newEngine(newMemoryBookingRepo(), models.DefaultSettings(), nil)

	// Sunday beyond the 30 day window reports the window, not the day off.
	_, err := svc.ValidateAndCreateBooking(context.Background(), bookingRequest("2026-12-27", "10:00"))
	assertCode(t, appErrors.ErrTooFarAhead, err)
}

func TestCreateBookingInputErrors(t *testing.T) {
	svc := newEngine(newMemoryBookingRepo(), models.DefaultSettings(), nil)
	ctx := context.Background()

	req := bookingRequest("2026-10-21", "17:00")
	req.Phone = "  "
	_, err := svc.ValidateAndCreateBooking(ctx, req)
	assertCode(t, appErrors.ErrMissingField, err)
	assert.Equal(t, []string{"phone is required"}, appErrors.FromError(err).Details)

	req = bookingRequest("2026-10-21", "17:00")
	req.Email = "jane@"
	_, err = svc.ValidateAndCreateBooking(ctx, req)
	assertCode(t, appErrors.ErrInvalidFormat, err)

	_, err = svc.ValidateAndCreateBooking(ctx, bookingRequest("2026-02-30", "17:00"))
	assertCode(t, appErrors.ErrInvalidFormat, err)

	_, err = svc.ValidateAndCreateBooking(ctx, bookingRequest("2026-10-21", "17:30"))
	assertCode(t, appErrors.ErrInvalidFormat, err)
}

func TestCreateBookingNormalizesTime(t *testing.T) {
	svc := newEngine(newMemoryBookingRepo(), models.DefaultSettings(), nil)

	record, err := svc.ValidateAndCreateBooking(context.Background(), bookingRequest("2026-10-21", "9:00"))
	require.NoError(t, err)
	assert.Equal(t, "09:00", record.Time)
}

func TestCreateBookingLowercasesEmail(t *testing.T) {
	svc := newEngine(newMemoryBookingRepo(), models.DefaultSettings(), nil)
	req := bookingRequest("2026-10-21", "17:00")
	req.Email = "  Jane.Doe@Example.COM "

	record, err := svc.ValidateAndCreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", record.Email)
}

func TestConcurrentBookingsOneWinner(t *testing.T) {
	repo := newMemoryBookingRepo()
	svc := newEngine(repo, models.DefaultSettings(), nil)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ValidateAndCreateBooking(context.Background(), bookingRequest("2026-10-21", "17:00"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.Equal(t, appErrors.ErrSlotTaken.Code, appErrors.FromError(err).Code)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, repo.count())
}

func TestBlockSlotIdempotentAndConflicts(t *testing.T) {
	repo := newMemoryBookingRepo(models.BookingRecord{Date: "2026-10-21", Time: "17:00", Name: "Jane"})
	svc := newEngine(repo, models.DefaultSettings(), nil)
	ctx := context.Background()

	first, created, err := svc.BlockSlot(ctx, dto.SlotRequest{Date: "2026-10-21", Time: "18:00"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.BlockSlot(ctx, dto.SlotRequest{Date: "2026-10-21", Time: "18:00"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, repo.count())

	_, _, err = svc.BlockSlot(ctx, dto.SlotRequest{Date: "2026-10-21", Time: "17:00"})
	assertCode(t, appErrors.ErrAlreadyBooked, err)

	_, _, err = svc.BlockSlot(ctx, dto.SlotRequest{Date: "2026-10-21"})
	assertCode(t, appErrors.ErrMissingField, err)
}

func TestUnblockCustomerBookingLeavesRecord(t *testing.T) {
	repo := newMemoryBookingRepo(models.BookingRecord{Date: "2026-10-21", Time: "17:00", Name: "Jane"})
	svc := newEngine(repo, models.DefaultSettings(), nil)

	err := svc.UnblockSlot(context.Background(), dto.SlotRequest{Date: "2026-10-21", Time: "17:00"})
	assertCode(t, appErrors.ErrNotBlocked, err)
	assert.Equal(t, 1, repo.count())
}

func TestGetDayAvailability(t *testing.T) {
	repo := newMemoryBookingRepo(
		models.BookingRecord{Date: "2026-10-21", Time: "09:00", Name: "Jane"},
		models.BookingRecord{Date: "2026-10-21", Time: "10:00", Name: models.BlockedPlaceholderName, IsBlocked: true},
		models.BookingRecord{Date: "2026-10-21", Time: "22:00", Name: "Late"},
	)
	svc := newEngine(repo, models.DefaultSettings(), nil)

	day, err := svc.GetDayAvailability(context.Background(), "2026-10-21")
	require.NoError(t, err)
	assert.False(t, day.DayOff)
	assert.False(t, day.FullyBooked)
	require.Len(t, day.Slots, 11)
	assert.Equal(t, models.Slot{Hour: 8, Time: "08:00", State: models.SlotOpen}, day.Slots[0])
	assert.Equal(t, models.SlotBooked, day.Slots[1].State)
	assert.Equal(t, models.SlotBlocked, day.Slots[2].State)
	assert.Equal(t, 18, day.Slots[10].Hour)

	sunday, err := svc.GetDayAvailability(context.Background(), "2026-10-25")
	require.NoError(t, err)
	assert.True(t, sunday.DayOff)
	assert.Empty(t, sunday.Slots)

	_, err = svc.GetDayAvailability(context.Background(), "2026-13-01")
	assertCode(t, appErrors.ErrInvalidDate, err)
}

func TestDayFullyBooked(t *testing.T) {
	settings := models.DefaultSettings()
	settings.StartHour, settings.EndHour = 9, 11
	repo := newMemoryBookingRepo(
		models.BookingRecord{Date: "2026-10-21", Time: "09:00", Name: "Jane"},
		models.BookingRecord{Date: "2026-10-21", Time: "10:00", IsBlocked: true},
	)
	svc := newEngine(repo, settings, nil)

	day, err := svc.GetDayAvailability(context.Background(), "2026-10-21")
	require.NoError(t, err)
	assert.True(t, day.FullyBooked)

	sunday, err := svc.GetDayAvailability(context.Background(), "2026-10-25")
	require.NoError(t, err)
	assert.False(t, sunday.FullyBooked)
}

func TestCalendarSummary(t *testing.T) {
	settings := models.DefaultSettings()
	settings.StartHour, settings.EndHour = 9, 10
	repo := newMemoryBookingRepo(models.BookingRecord{Date: "2026-10-20", Time: "09:00", Name: "Jane"})
	svc := newEngine(repo, settings, nil)

	days, err := svc.CalendarSummary(context.Background(), dto.CalendarQuery{From: "2026-10-19", To: "2026-10-25"})
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.Equal(t, models.CalendarDay{Date: "2026-10-19", OpenSlots: 1}, days[0])
	assert.Equal(t, models.CalendarDay{Date: "2026-10-20", FullyBooked: true}, days[1])
	assert.Equal(t, models.CalendarDay{Date: "2026-10-25", DayOff: true}, days[6])

	_, err = svc.CalendarSummary(context.Background(), dto.CalendarQuery{From: "2026-10-19", To: "2027-01-01"})
	assertCode(t, appErrors.ErrValidation, err)

	_, err = svc.CalendarSummary(context.Background(), dto.CalendarQuery{From: "2026-10-19", To: "2026-10-18"})
	assertCode(t, appErrors.ErrValidation, err)

	_, err = svc.CalendarSummary(context.Background(), dto.CalendarQuery{From: "bad"})
	assertCode(t, appErrors.ErrInvalidDate, err)
}

func TestStoreTimeoutSurfacesUnavailable(t *testing.T) {
	repo := newMemoryBookingRepo()
	repo.delay = time.Second
	svc := NewAvailabilityService(repo, staticSettings{settings: models.DefaultSettings()}, nil, nil, nil, AvailabilityConfig{StoreTimeout: 20 * time.Millisecond})
	svc.now = func() time.Time { return fixedNow }

	_, err := svc.ValidateAndCreateBooking(context.Background(), bookingRequest("2026-10-21", "17:00"))
	assertCode(t, appErrors.ErrStoreUnavailable, err)
}

func TestBookingInTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	settings := models.DefaultSettings()
	svc := NewAvailabilityService(newMemoryBookingRepo(), staticSettings{settings: settings}, nil, nil, nil, AvailabilityConfig{Location: loc})
	// 2026-10-19 10:00 UTC is 06:00 in New York.
	svc.now = func() time.Time { return fixedNow }

	_, err = svc.ValidateAndCreateBooking(context.Background(), bookingRequest("2026-10-20", "06:00"))
	assertCode(t, appErrors.ErrOutsideHours, err)

	_, err = svc.ValidateAndCreateBooking(context.Background(), bookingRequest("2026-10-20", "05:00"))
	assertCode(t, appErrors.ErrTooSoon, err)
}
