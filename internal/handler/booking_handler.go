package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainer-booking-api/internal/dto"
	"github.com/noah-isme/trainer-booking-api/internal/models"
	"github.com/noah-isme/trainer-booking-api/internal/service"
	appErrors "github.com/noah-isme/trainer-booking-api/pkg/errors"
	"github.com/noah-isme/trainer-booking-api/pkg/response"
)

type bookingCreator interface {
	ValidateAndCreateBooking(ctx context.Context, req dto.CreateBookingRequest) (*models.BookingRecord, error)
}

type bookingService interface {
	List(ctx context.Context, query dto.ListBookingsQuery) ([]models.BookingRecord, error)
	Cancel(ctx context.Context, id string) error
	BookedSlots(ctx context.Context, date string) (map[string]models.SlotStatus, error)
	Export(ctx context.Context, query dto.ListBookingsQuery) (*service.ExportFile, error)
}

// BookingHandler wires booking endpoints.
type BookingHandler struct {
	engine   bookingCreator
	bookings bookingService
}

// NewBookingHandler creates a new handler.
func NewBookingHandler(engine bookingCreator, bookings bookingService) *BookingHandler {
	return &BookingHandler{engine: engine, bookings: bookings}
}

// Create godoc
// @Summary Book a session
// @Description Validates the slot against the current settings and reserves it. Sessions start on the hour: time must be HH:00 (24h), any other minute is rejected with INVALID_FORMAT.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	record, err := h.engine.ValidateAndCreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List bookings
// @Description All bookings and blocked slots ordered by date then time
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	var query dto.ListBookingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	records, err := h.bookings.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, map[string]interface{}{"count": len(records)})
}

// Cancel godoc
// @Summary Cancel booking
// @Description Deletes a booking or blocked slot by id
// @Tags Bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	if err := h.bookings.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BookedSlots godoc
// @Summary Booked slots for a date
// @Description Map of taken times to their booked and blocked flags
// @Tags Bookings
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bookings/date/{date} [get]
func (h *BookingHandler) BookedSlots(c *gin.Context) {
	slots, err := h.bookings.BookedSlots(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots)
}

// Export godoc
// @Summary Export bookings
// @Description Download bookings as CSV or PDF
// @Tags Bookings
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /bookings/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	var query dto.ListBookingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	file, err := h.bookings.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
