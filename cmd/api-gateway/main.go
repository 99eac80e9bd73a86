package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/trainer-booking-api/api/swagger"
	"github.com/noah-isme/trainer-booking-api/internal/handler"
	internalmiddleware "github.com/noah-isme/trainer-booking-api/internal/middleware"
	"github.com/noah-isme/trainer-booking-api/internal/models"
	"github.com/noah-isme/trainer-booking-api/internal/repository"
	"github.com/noah-isme/trainer-booking-api/internal/service"
	"github.com/noah-isme/trainer-booking-api/pkg/cache"
	"github.com/noah-isme/trainer-booking-api/pkg/config"
	"github.com/noah-isme/trainer-booking-api/pkg/export"
	"github.com/noah-isme/trainer-booking-api/pkg/jobs"
	"github.com/noah-isme/trainer-booking-api/pkg/logger"
	"github.com/noah-isme/trainer-booking-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/trainer-booking-api/pkg/middleware/cors"
	"github.com/noah-isme/trainer-booking-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/trainer-booking-api/pkg/middleware/requestid"
)

// @title Trainer Booking API
// @version 1.0.0
// @description Session booking, availability and admin slot management for a personal trainer
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	stores, err := repository.Open(bootCtx, cfg, logr)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			logr.Warn("failed to close store", zap.Error(err))
		}
	}()
	logr.Info("store connected", zap.String("driver", stores.Driver))

	redisClient, err := cache.NewRedis(bootCtx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, token revocation disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	location := cfg.Booking.Location()

	notifications := newNotifications(cfg, metrics, logr)
	notifications.Start(ctx)
	defer notifications.Stop()

	settingsSvc := service.NewSettingsService(stores.Settings, validate, logr, cfg.Store.Timeout, metrics)
	engine := service.NewAvailabilityService(stores.Bookings, settingsSvc, notifications, metrics, logr, service.AvailabilityConfig{
		Location:     location,
		StoreTimeout: cfg.Store.Timeout,
	})
	bookingSvc := service.NewBookingService(stores.Bookings, logr, cfg.Store.Timeout, location, metrics, export.NewCSVExporter(), export.NewPDFExporter())
	authSvc := service.NewAuthService(stores.Admins, repository.NewTokenDenylistRepository(redisClient), validate, logr, service.AuthConfig{
		Secret:       cfg.JWT.Secret,
		Expiry:       cfg.JWT.Expiration,
		Issuer:       cfg.JWT.Issuer,
		StoreTimeout: cfg.Store.Timeout,
	})

	if err := authSvc.EnsureDefaultAdmin(bootCtx, cfg.Admin.DefaultUsername, cfg.Admin.DefaultPassword); err != nil {
		return fmt.Errorf("seed default admin: %w", err)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, stores, cfg.Store.Timeout)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	availabilityHandler := handler.NewAvailabilityHandler(engine)
	bookingHandler := handler.NewBookingHandler(engine, bookingSvc)
	adminHandler := handler.NewAdminHandler(authSvc, engine)

	requireAdmin := internalmiddleware.JWT(authSvc)
	bookingLimit := limiter(cfg.RateLimit, logr)
	loginLimit := limiter(cfg.RateLimit, logr)
	audit := func(action string) gin.HandlerFunc { return internalmiddleware.Audit(logr, action) }

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/settings", settingsHandler.Get)
		api.PUT("/settings", requireAdmin, audit(models.AuditActionUpdateSettings), settingsHandler.Update)

		api.GET("/availability", availabilityHandler.Calendar)
		api.GET("/availability/:date", availabilityHandler.Day)

		api.GET("/bookings/date/:date", bookingHandler.BookedSlots)
		api.POST("/bookings", bookingLimit, bookingHandler.Create)
		api.GET("/bookings", requireAdmin, bookingHandler.List)
		api.GET("/bookings/export", requireAdmin, audit(models.AuditActionExportBookings), bookingHandler.Export)
		api.DELETE("/bookings/:id", requireAdmin, audit(models.AuditActionCancelBooking), bookingHandler.Cancel)

		api.POST("/admin/login", loginLimit, adminHandler.Login)
		admin := api.Group("/admin", requireAdmin)
		admin.POST("/logout", audit(models.AuditActionLogout), adminHandler.Logout)
		admin.GET("/me", adminHandler.Me)
		admin.POST("/block-slot", audit(models.AuditActionBlockSlot), adminHandler.BlockSlot)
		admin.POST("/unblock-slot", audit(models.AuditActionUnblockSlot), adminHandler.UnblockSlot)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", stores.Driver, "timezone", location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

func newNotifications(cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) *service.NotificationService {
	queueCfg := jobs.QueueConfig{
		Workers:    cfg.Notification.Workers,
		BufferSize: cfg.Notification.BufferSize,
		MaxRetries: cfg.Notification.MaxRetries,
		RetryDelay: cfg.Notification.RetryDelay,
		JobTimeout: 2 * cfg.Email.SendTimeout,
	}
	if !cfg.Email.Enabled() {
		return service.NewNotificationService(nil, "", metrics, logr, queueCfg)
	}
	return service.NewNotificationService(mailer.NewSMTP(cfg.Email), cfg.Email.TrainerEmail, metrics, logr, queueCfg)
}

func limiter(cfg config.RateLimitConfig, logr *zap.Logger) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return ratelimit.New(cfg.RequestsPerMinute, cfg.Burst, logr).Middleware()
}
