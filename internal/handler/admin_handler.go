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

type adminAuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, claims *models.AdminClaims) error
	Me(ctx context.Context, claims *models.AdminClaims) (*models.AdminInfo, error)
}

type slotAdminService interface {
	BlockSlot(ctx context.Context, req dto.SlotRequest) (*models.BookingRecord, bool, error)
	UnblockSlot(ctx context.Context, req dto.SlotRequest) error
}

// AdminHandler wires admin session and slot management endpoints.
type AdminHandler struct {
	auth  adminAuthService
	slots slotAdminService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(auth adminAuthService, slots slotAdminService) *AdminHandler {
	return &AdminHandler{auth: auth, slots: slots}
}

// Login godoc
// @Summary Admin login
// @Description Authenticate the trainer and receive a bearer token
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Logout godoc
// @Summary Admin logout
// @Description Revoke the presented token
// @Tags Admin
// @Security BearerAuth
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/logout [post]
func (h *AdminHandler) Logout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Current admin
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/me [get]
func (h *AdminHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	info, err := h.auth.Me(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

// BlockSlot godoc
// @Summary Block a slot
// @Description Reserve a slot with a placeholder. Blocking an already blocked slot succeeds.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SlotRequest true "Slot"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/block-slot [post]
func (h *AdminHandler) BlockSlot(c *gin.Context) {
	var req dto.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	record, created, err := h.slots.BlockSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(c, status, record)
}

// UnblockSlot godoc
// @Summary Unblock a slot
// @Description Remove a placeholder. Customer bookings cannot be unblocked.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SlotRequest true "Slot"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/unblock-slot [post]
func (h *AdminHandler) UnblockSlot(c *gin.Context) {
	var req dto.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	if err := h.slots.UnblockSlot(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"date": req.Date, "time": req.Time, "message": "slot unblocked"})
}
