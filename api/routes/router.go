// api/routes/router.go
package routes

import (
	"context"
	"net/http"
	"time"

	"tourly/internal/activities"
	"tourly/internal/analytics"
	"tourly/internal/auth"
	"tourly/internal/bookingqr"
	"tourly/internal/bookings"
	"tourly/internal/notifications"
	"tourly/internal/payments"
	"tourly/internal/profiles"
	"tourly/internal/shared/config"
	"tourly/internal/shared/database"
	"tourly/internal/shared/middleware"
	"tourly/pkg/cache"
	"tourly/pkg/logger"
	"tourly/pkg/media"
	"tourly/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Router wires every module onto one engine
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier notifications.Service
	log      *logger.Logger

	cache    cache.Service
	profiles profiles.Repository
	bookings bookings.Service
	actSvc   activities.Service
}

func NewRouter(cfg *config.Config, db *database.DB, notifier notifications.Service, log *logger.Logger) *Router {
	r := &Router{
		config:   cfg,
		db:       db,
		notifier: notifier,
		log:      log,
		cache:    cache.Noop{},
	}
	if db.Redis != nil {
		r.cache = cache.NewService(db.Redis)
	}
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(metrics.Middleware())
	r.setupHealthRoutes(engine)
	engine.Static("/uploads", r.config.Upload.Path)

	requireAuth := middleware.JWTAuthWithConfig(r.config)
	optionalAuth := middleware.OptionalAuthWithConfig(r.config)

	api := engine.Group(r.config.GetAPIBasePath())
	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())

	r.setupProfileRoutes(api, admin, requireAuth)
	r.setupActivityRoutes(api, admin)
	r.setupBookingRoutes(api, admin, requireAuth, optionalAuth)
	r.setupPaymentRoutes(api)
	r.setupQRRoutes(api, admin)
	r.setupAnalyticsRoutes(admin)
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		checks := r.db.HealthCheck(ctx)
		status, code := "healthy", http.StatusOK
		if !database.Healthy(checks) {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now().UTC(),
			"service":   "tourly-api",
			"version":   r.config.APIVersion,
		})
	})

	engine.GET("/metrics", metrics.Handler())
}

func (r *Router) setupProfileRoutes(api, admin *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	r.profiles = profiles.NewRepository(r.db.PostgreSQL)

	authService := auth.NewService(r.profiles, r.config, r.log)
	auth.SetupAuthRoutes(api, auth.NewController(authService), requireAuth)

	profileService := profiles.NewService(r.profiles, r.log)
	profiles.SetupProfileRoutes(admin, profiles.NewController(profileService))
}

func (r *Router) setupActivityRoutes(api, admin *gin.RouterGroup) {
	r.actSvc = activities.NewService(activities.NewRepository(r.db.PostgreSQL), r.config.Booking.DefaultCurrency, r.log)
	r.actSvc.SetCacheService(r.cache)
	r.actSvc.SetImageStore(r.imageStore())

	activities.SetupActivityRoutes(api, admin, activities.NewController(r.actSvc, r.config.Upload.MaxSize))
}

// imageStore prefers S3 when a bucket is configured and always keeps local disk as fallback
func (r *Router) imageStore() *media.FallbackUploader {
	var providers []media.Uploader

	if r.config.AWS.S3Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s3, err := media.NewS3Uploader(ctx, r.config.AWS)
		if err != nil {
			r.log.Warn("S3 uploader unavailable, using local storage only", "error", err)
		} else {
			providers = append(providers, s3)
		}
	}
	providers = append(providers, media.NewLocalUploader(r.config.Upload.Path, r.config.Upload.BaseURL))

	store := media.NewFallbackUploader(providers...)
	r.log.Info("Image storage configured", "providers", store.Name())
	return store
}

func (r *Router) setupBookingRoutes(api, admin *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	opts := bookings.Options{
		DefaultCurrency: r.config.Booking.DefaultCurrency,
		References:      bookings.NewReferenceGenerator(r.config.Booking.ReferencePrefix),
		Activities:      r.actSvc,
		Notifier:        r.notifier,
	}
	if r.config.PaymentsEnabled() {
		opts.Payments = payments.NewStripeGateway(r.config.Stripe.SecretKey)
	} else {
		r.log.Info("Stripe secret key not set, payment intents disabled")
	}

	r.bookings = bookings.NewService(bookings.NewRepository(r.db.PostgreSQL), profiles.NewResolver(r.log), opts, r.log)
	bookings.SetupBookingRoutes(api, admin, bookings.NewController(r.bookings), requireAuth, optionalAuth)
}

func (r *Router) setupPaymentRoutes(api *gin.RouterGroup) {
	dispatcher := payments.NewDispatcher(r.bookings, profiles.NewService(r.profiles, r.log), r.notifier, r.log)
	verifier := payments.NewStripeVerifier(r.config.Stripe.WebhookSecret)

	payments.SetupPaymentRoutes(api, payments.NewController(verifier, dispatcher, r.config.Stripe.MaxBodyBytes, r.log))
}

func (r *Router) setupQRRoutes(api, admin *gin.RouterGroup) {
	signer, err := bookingqr.NewSigner(r.config.QR.Secret)
	if err != nil {
		r.log.Warn("QR signing secret not set, QR routes disabled", "error", err)
		return
	}

	service := bookingqr.NewService(signer, r.bookings, r.config.QR.Size)
	bookingqr.SetupQRRoutes(api, admin, bookingqr.NewController(service))
}

func (r *Router) setupAnalyticsRoutes(admin *gin.RouterGroup) {
	service := analytics.NewService(analytics.NewRepository(r.db.PostgreSQL), r.config.Redis.DashboardTTL)
	service.SetCacheService(r.cache)

	analytics.SetupAnalyticsRoutes(admin, analytics.NewController(service))
}
