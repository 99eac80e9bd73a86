package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/trainer-booking-api/internal/dto"
	"github.com/noah-isme/trainer-booking-api/internal/models"
	"github.com/noah-isme/trainer-booking-api/internal/repository"
	appErrors "github.com/noah-isme/trainer-booking-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	InitDefaults(ctx context.Context, defaults models.Settings) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

// SettingsService reads and updates the booking policy.
type SettingsService struct {
	repo      settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
	store     storeGuard
	now       func() time.Time
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, validate *validator.Validate, logger *zap.Logger, storeTimeout time.Duration, metrics *MetricsService) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SettingsService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		store:     newStoreGuard(storeTimeout, metrics),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the stored settings, creating the defaults on first read.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	var settings *models.Settings
	err := s.store.run(ctx, "settings.get", func(ctx context.Context) error {
		var err error
		settings, err = s.repo.Get(ctx)
		return err
	})
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	defaults := models.DefaultSettings()
	defaults.UpdatedAt = s.now()
	err = s.store.run(ctx, "settings.init", func(ctx context.Context) error {
		var err error
		settings, err = s.repo.InitDefaults(ctx, defaults)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("default settings created")
	return settings, nil
}

// Update merges the partial request onto the current settings, validates the result and saves it.
// Nothing is written when validation fails.
func (s *SettingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (*models.Settings, error) {
	if req.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrInvalidSettings, "", []string{"at least one setting must be provided"})
	}
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	merged := req.Apply(*current)
	merged.DaysOff = merged.DaysOff.Normalize()
	if err := s.Validate(merged); err != nil {
		return nil, err
	}
	merged.UpdatedAt = s.now()

	if err := s.store.run(ctx, "settings.save", func(ctx context.Context) error {
		return s.repo.Save(ctx, &merged)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("settings updated",
		zap.Int("start_hour", merged.StartHour),
		zap.Int("end_hour", merged.EndHour),
		zap.Ints("days_off", merged.DaysOff),
	)
	return &merged, nil
}

// Validate checks every settings invariant and reports all violations at once.
func (s *SettingsService) Validate(settings models.Settings) error {
	err := s.validator.Struct(settings)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrInvalidSettings.Code, appErrors.ErrInvalidSettings.Status, appErrors.ErrInvalidSettings.Message)
	}

	details := make([]string, 0, len(verrs))
	seen := make(map[string]struct{}, len(verrs))
	for _, fe := range verrs {
		msg := settingsFieldMessage(fe)
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		details = append(details, msg)
	}
	return appErrors.WithDetails(appErrors.ErrInvalidSettings, "", details)
}

func settingsFieldMessage(fe validator.FieldError) string {
	field := fe.StructField()
	switch {
	case field == "StartHour":
		return "startHour must be between 0 and 23"
	case field == "EndHour" && fe.Tag() == "gtfield":
		return "endHour must be greater than startHour"
	case field == "EndHour":
		return "endHour must be between 1 and 24"
	case field == "SessionDurationMinutes":
		return "sessionDuration must be between 15 and 240 minutes"
	case strings.HasPrefix(field, "DaysOff"):
		return "daysOff values must be weekday numbers between 0 and 6"
	case field == "AdvanceBookingDays":
		return "advanceBookingDays must be between 1 and 365"
	case field == "MinAdvanceHours":
		return "minAdvanceHours must be between 0 and 72"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
