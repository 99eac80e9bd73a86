package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainer-booking-api/internal/dto"
	"github.com/noah-isme/trainer-booking-api/internal/models"
	appErrors "github.com/noah-isme/trainer-booking-api/pkg/errors"
	"github.com/noah-isme/trainer-booking-api/pkg/response"
)

type settingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, req dto.UpdateSettingsRequest) (*models.Settings, error)
}

// SettingsHandler exposes the trainer's working-hours configuration.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler creates a new handler.
func NewSettingsHandler(svc settingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// Get godoc
// @Summary Get settings
// @Description Current working hours, session length, days off and booking window
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}

// Update godoc
// @Summary Update settings
// @Description Partially update settings. Every provided field is validated before anything is saved.
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateSettingsRequest true "Settings fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidSettings.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}

	settings, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}
