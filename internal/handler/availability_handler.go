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

type availabilityService interface {
	GetDayAvailability(ctx context.Context, date string) (*models.DayAvailability, error)
	CalendarSummary(ctx context.Context, query dto.CalendarQuery) ([]models.CalendarDay, error)
}

// AvailabilityHandler serves the public slot views.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler creates a new handler.
func NewAvailabilityHandler(svc availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Day godoc
// @Summary Day availability
// @Description Every slot of a date with its open, booked or blocked state
// @Tags Availability
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /availability/{date} [get]
func (h *AvailabilityHandler) Day(c *gin.Context) {
	day, err := h.service.GetDayAvailability(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day)
}

// Calendar godoc
// @Summary Calendar summary
// @Description Day-off and fully-booked flags for each date in an inclusive range
// @Tags Availability
// @Produce json
// @Param from query string true "First date (YYYY-MM-DD)"
// @Param to query string true "Last date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) Calendar(c *gin.Context) {
	var query dto.CalendarQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	days, err := h.service.CalendarSummary(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, map[string]interface{}{"from": query.From, "to": query.To, "count": len(days)})
}
