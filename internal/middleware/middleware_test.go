package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/trainer-booking-api/internal/models"
	"github.com/noah-isme/trainer-booking-api/internal/service"
	appErrors "github.com/noah-isme/trainer-booking-api/pkg/errors"
)

type validatorStub struct {
	token string
	err   error
}

func (v *validatorStub) ValidateToken(ctx context.Context, token string) (*models.AdminClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	if token != v.token {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.AdminClaims{AdminID: "a1", Username: "admin"}, nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		claims, ok := AdminClaims(c)
		if ok {
			c.String(http.StatusOK, claims.AdminID)
			return
		}
		c.Status(http.StatusOK)
	})
	r.POST("/admin/block", handlers...)
	return r
}

func TestJWTAcceptsBearerToken(t *testing.T) {
	r := newRouter(JWT(&validatorStub{token: "good"}))
	req := httptest.NewRequest(http.MethodPost, "/admin/block", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a1", w.Body.String())
}

func TestJWTRejectsMissingOrMalformedHeader(t *testing.T) {
	r := newRouter(JWT(&validatorStub{token: "good"}))
	for _, header := range []string{"", "good", "Basic good", "Bearer ", "Bearer bad"} {
		req := httptest.NewRequest(http.MethodPost, "/admin/block", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestJWTPropagatesStoreFailure(t *testing.T) {
	r := newRouter(JWT(&validatorStub{err: appErrors.ErrStoreUnavailable}))
	req := httptest.NewRequest(http.MethodPost, "/admin/block", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuditLogsSuccessfulActions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newRouter(JWT(&validatorStub{token: "good"}), Audit(zap.New(core), models.AuditActionBlockSlot))

	req := httptest.NewRequest(http.MethodPost, "/admin/block", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("admin action").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, models.AuditActionBlockSlot, fields["action"])
	assert.Equal(t, "a1", fields["admin_id"])
	assert.Equal(t, "/admin/block", fields["path"])
}

func TestAuditSkipsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin/unblock", Audit(zap.New(core), models.AuditActionUnblockSlot), func(c *gin.Context) {
		c.Status(http.StatusConflict)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/unblock", nil))
	assert.Zero(t, logs.Len())
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	metrics := service.NewMetricsService()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metrics))
	r.DELETE("/bookings/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/bookings/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
