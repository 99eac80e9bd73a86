package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainer-booking-api/internal/middleware"
	"github.com/noah-isme/trainer-booking-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.AdminClaims {
	claims, ok := middleware.AdminClaims(c)
	if !ok {
		return nil
	}
	return claims
}
