package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/trainer-booking-api/internal/dto"
	"github.com/noah-isme/trainer-booking-api/internal/models"
	"github.com/noah-isme/trainer-booking-api/internal/repository"
	appErrors "github.com/noah-isme/trainer-booking-api/pkg/errors"
)

// MaxCalendarDays bounds a calendar summary request.
const MaxCalendarDays = 62

type bookingRepository interface {
	FindBySlot(ctx context.Context, date, slotTime string) (*models.BookingRecord, error)
	ListByDate(ctx context.Context, date string) ([]models.BookingRecord, error)
	ListRange(ctx context.Context, filter models.BookingFilter) ([]models.BookingRecord, error)
	Create(ctx context.Context, record *models.BookingRecord) error
	DeleteByID(ctx context.Context, id string) error
	DeleteBlocked(ctx context.Context, date, slotTime string) error
}

type settingsProvider interface {
	Get(ctx context.Context) (*models.Settings, error)
}

type bookingNotifier interface {
	NotifyNewBooking(record models.BookingRecord)
}

// AvailabilityConfig tunes the availability engine.
type AvailabilityConfig struct {
	Location     *time.Location
	StoreTimeout time.Duration
}

// AvailabilityService decides which slots can be booked and records bookings and blocks.
type AvailabilityService struct {
	bookings bookingRepository
	settings settingsProvider
	notifier bookingNotifier
	metrics  *MetricsService
	logger   *zap.Logger
	store    storeGuard
	location *time.Location
	now      func() time.Time
}

// NewAvailabilityService constructs the engine. notifier and metrics may be nil.
func NewAvailabilityService(bookings bookingRepository, settings settingsProvider, notifier bookingNotifier, metrics *MetricsService, logger *zap.Logger, cfg AvailabilityConfig) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &AvailabilityService{
		bookings: bookings,
		settings: settings,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		store:    newStoreGuard(cfg.StoreTimeout, metrics),
		location: cfg.Location,
		now:      time.Now,
	}
}

// GetDayAvailability returns the slot map for date. Days off carry no slots.
func (s *AvailabilityService) GetDayAvailability(ctx context.Context, date string) (*models.DayAvailability, error) {
	day, ok := parseDate(strings.TrimSpace(date), s.location)
	if !ok {
		return nil, appErrors.ErrInvalidDate
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	key := day.Format(dateLayout)
	if settings.IsDayOff(day.Weekday()) {
		return &models.DayAvailability{Date: key, DayOff: true, Slots: []models.Slot{}}, nil
	}

	var records []models.BookingRecord
	if err := s.store.run(ctx, "bookings.list_by_date", func(ctx context.Context) error {
		var err error
		records, err = s.bookings.ListByDate(ctx, key)
		return err
	}); err != nil {
		return nil, err
	}

	slots := BuildSlots(*settings, records)
	return &models.DayAvailability{
		Date:        key,
		Slots:       slots,
		FullyBooked: IsFullyBooked(*settings, slots),
	}, nil
}

// CalendarSummary reports day-off and fully-booked flags for every date in [from, to].
func (s *AvailabilityService) CalendarSummary(ctx context.Context, query dto.CalendarQuery) ([]models.CalendarDay, error) {
	from, okFrom := parseDate(strings.TrimSpace(query.From), s.location)
	to, okTo := parseDate(strings.TrimSpace(query.To), s.location)
	if !okFrom || !okTo {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "from and to must be YYYY-MM-DD dates")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	days := int(to.Sub(from).Hours()/24+0.5) + 1
	if days > MaxCalendarDays {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "date range too large", []string{"range may span at most 62 days"})
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	var records []models.BookingRecord
	filter := models.BookingFilter{From: from.Format(dateLayout), To: to.Format(dateLayout)}
	if err := s.store.run(ctx, "bookings.list_range", func(ctx context.Context) error {
		var err error
		records, err = s.bookings.ListRange(ctx, filter)
		return err
	}); err != nil {
		return nil, err
	}

	byDate := make(map[string][]models.BookingRecord)
	for _, r := range records {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	result := make([]models.CalendarDay, 0, days)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		if settings.IsDayOff(d.Weekday()) {
			result = append(result, models.CalendarDay{Date: key, DayOff: true})
			continue
		}
		slots := BuildSlots(*settings, byDate[key])
		open := 0
		for _, slot := range slots {
			if slot.State == models.SlotOpen {
				open++
			}
		}
		result = append(result, models.CalendarDay{
			Date:        key,
			FullyBooked: IsFullyBooked(*settings, slots),
			OpenSlots:   open,
		})
	}
	return result, nil
}

// ValidateAndCreateBooking checks a booking request against the policy and persists it.
// Checks run in a fixed order and stop at the first failure.
func (s *AvailabilityService) ValidateAndCreateBooking(ctx context.Context, req dto.CreateBookingRequest) (*models.BookingRecord, error) {
	record, err := s.createBooking(ctx, req)
	s.recordOutcome(OutcomeCreated, err)
	return record, err
}

func (s *AvailabilityService) createBooking(ctx context.Context, req dto.CreateBookingRequest) (*models.BookingRecord, error) {
	candidate := models.BookingRecord{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Phone: strings.TrimSpace(req.Phone),
		Date:  strings.TrimSpace(req.Date),
		Time:  strings.TrimSpace(req.Time),
		Notes: strings.TrimSpace(req.Notes),
	}
	if err := validateCandidate(candidate); err != nil {
		return nil, err
	}
	day, hour, err := slotKey(candidate.Date, candidate.Time, s.location)
	if err != nil {
		return nil, err
	}
	candidate.Date = day.Format(dateLayout)
	candidate.Time = formatHour(hour)

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.findSlot(ctx, candidate.Date, candidate.Time)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, appErrors.ErrSlotTaken
	}

	if err := CheckBookingPolicy(*settings, day, hour, s.now()); err != nil {
		return nil, err
	}

	candidate.IsBlocked = false
	candidate.CreatedAt = s.now().UTC()
	if err := s.store.run(ctx, "bookings.create", func(ctx context.Context) error {
		return s.bookings.Create(ctx, &candidate)
	}); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.ErrSlotTaken
		}
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", candidate.ID),
		zap.String("date", candidate.Date),
		zap.String("time", candidate.Time),
	)
	if s.notifier != nil {
		s.notifier.NotifyNewBooking(candidate)
	}
	return &candidate, nil
}

func validateCandidate(c models.BookingRecord) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", c.Name}, {"email", c.Email}, {"phone", c.Phone}, {"date", c.Date}, {"time", c.Time},
	} {
		if f.value == "" {
			missing = append(missing, f.name+" is required")
		}
	}
	if len(missing) > 0 {
		return appErrors.WithDetails(appErrors.ErrMissingField, "", missing)
	}
	if !validEmail(c.Email) {
		return appErrors.WithDetails(appErrors.ErrInvalidFormat, "", []string{"email must be a valid address"})
	}
	return nil
}

// CheckBookingPolicy applies the advance window, day-off and working-hour rules, in that order,
// to a booking starting at hour on day. Instants before now always fail as too soon.
func CheckBookingPolicy(settings models.Settings, day time.Time, hour int, now time.Time) error {
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
	lead := start.Sub(now)

	if lead < 0 || lead < time.Duration(settings.MinAdvanceHours)*time.Hour {
		return appErrors.Clone(appErrors.ErrTooSoon, tooSoonMessage(settings.MinAdvanceHours))
	}
	if lead > time.Duration(settings.AdvanceBookingDays)*24*time.Hour {
		return appErrors.Clone(appErrors.ErrTooFarAhead, "bookings can only be made up to "+strconv.Itoa(settings.AdvanceBookingDays)+" days in advance")
	}
	if settings.IsDayOff(day.Weekday()) {
		return appErrors.ErrDayOff
	}
	if hour < settings.StartHour || hour >= settings.EndHour {
		return appErrors.ErrOutsideHours
	}
	return nil
}

func tooSoonMessage(hours int) string {
	if hours == 0 {
		return "bookings cannot be made in the past"
	}
	return "bookings must be made at least " + strconv.Itoa(hours) + " hours in advance"
}

// BlockSlot occupies a slot with an admin placeholder. Blocking an already blocked slot succeeds
// without writing; created reports whether a new placeholder was stored.
func (s *AvailabilityService) BlockSlot(ctx context.Context, req dto.SlotRequest) (record *models.BookingRecord, created bool, err error) {
	defer func() { s.recordOutcome(OutcomeBlocked, err) }()

	day, hour, err := slotKey(req.Date, req.Time, s.location)
	if err != nil {
		return nil, false, err
	}
	date, slotTime := day.Format(dateLayout), formatHour(hour)

	existing, err := s.findSlot(ctx, date, slotTime)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if existing.IsBlocked {
			return existing, false, nil
		}
		return nil, false, appErrors.ErrAlreadyBooked
	}

	placeholder := models.BookingRecord{
		Name:      models.BlockedPlaceholderName,
		Date:      date,
		Time:      slotTime,
		IsBlocked: true,
		CreatedAt: s.now().UTC(),
	}
	err = s.store.run(ctx, "bookings.create", func(ctx context.Context) error {
		return s.bookings.Create(ctx, &placeholder)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		winner, findErr := s.findSlot(ctx, date, slotTime)
		if findErr != nil {
			return nil, false, findErr
		}
		if winner != nil && winner.IsBlocked {
			return winner, false, nil
		}
		return nil, false, appErrors.ErrAlreadyBooked
	}
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("slot blocked", zap.String("date", date), zap.String("time", slotTime))
	return &placeholder, true, nil
}

// UnblockSlot removes an admin placeholder. Customer bookings are left untouched.
func (s *AvailabilityService) UnblockSlot(ctx context.Context, req dto.SlotRequest) error {
	day, hour, err := slotKey(req.Date, req.Time, s.location)
	if err != nil {
		return err
	}
	date, slotTime := day.Format(dateLayout), formatHour(hour)

	existing, err := s.findSlot(ctx, date, slotTime)
	if err != nil {
		return err
	}
	if existing == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "no booking or block exists for this slot")
	}
	if !existing.IsBlocked {
		return appErrors.ErrNotBlocked
	}

	err = s.store.run(ctx, "bookings.delete_blocked", func(ctx context.Context) error {
		return s.bookings.DeleteBlocked(ctx, date, slotTime)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "no blocked slot exists for this slot")
	}
	if err != nil {
		return err
	}
	s.logger.Info("slot unblocked", zap.String("date", date), zap.String("time", slotTime))
	return nil
}

// findSlot returns nil without error when the slot is free.
func (s *AvailabilityService) findSlot(ctx context.Context, date, slotTime string) (*models.BookingRecord, error) {
	var record *models.BookingRecord
	err := s.store.run(ctx, "bookings.find_by_slot", func(ctx context.Context) error {
		var err error
		record, err = s.bookings.FindBySlot(ctx, date, slotTime)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *AvailabilityService) recordOutcome(success string, err error) {
	if s.metrics == nil {
		return
	}
	if err == nil {
		s.metrics.RecordBookingOutcome(success)
		return
	}
	s.metrics.RecordBookingOutcome(appErrors.FromError(err).Code)
}

// BuildSlots lays out one slot per working hour and marks the ones occupied by records.
// Records outside working hours are ignored.
func BuildSlots(settings models.Settings, records []models.BookingRecord) []models.Slot {
	occupied := make(map[string]models.SlotState, len(records))
	for _, r := range records {
		if r.IsBlocked {
			occupied[r.Time] = models.SlotBlocked
		} else {
			occupied[r.Time] = models.SlotBooked
		}
	}

	slots := make([]models.Slot, 0, settings.SlotCount())
	for hour := settings.StartHour; hour < settings.EndHour; hour++ {
		key := formatHour(hour)
		state, ok := occupied[key]
		if !ok {
			state = models.SlotOpen
		}
		slots = append(slots, models.Slot{Hour: hour, Time: key, State: state})
	}
	return slots
}

// IsFullyBooked reports whether every working-hour slot is booked or blocked.
func IsFullyBooked(settings models.Settings, slots []models.Slot) bool {
	total := settings.SlotCount()
	if total == 0 {
		return false
	}
	taken := 0
	for _, slot := range slots {
		if slot.State != models.SlotOpen {
			taken++
		}
	}
	return taken >= total
}
