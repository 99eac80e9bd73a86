package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainer-booking-api/internal/models"
	appErrors "github.com/noah-isme/trainer-booking-api/pkg/errors"
	"github.com/noah-isme/trainer-booking-api/pkg/response"
)

// ContextAdminKey is the gin context key storing the admin JWT claims.
const ContextAdminKey = "currentAdmin"

type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.AdminClaims, error)
}

// JWT protects routes by requiring a valid, unrevoked admin access token.
func JWT(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "no token provided"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAdminKey, claims)
		c.Next()
	}
}

// AdminClaims returns the claims stored by JWT, if any.
func AdminClaims(c *gin.Context) (*models.AdminClaims, bool) {
	v, ok := c.Get(ContextAdminKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.AdminClaims)
	return claims, ok && claims != nil
}
