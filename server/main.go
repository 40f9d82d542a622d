package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tourly/api/routes"
	"tourly/internal/notifications"
	"tourly/internal/shared/config"
	"tourly/internal/shared/database"
	"tourly/internal/shared/middleware"
	"tourly/pkg/logger"
	"tourly/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	if envErr != nil {
		appLogger.Info("No .env file found, using system environment variables")
	} else {
		appLogger.Info("Loaded .env file")
	}

	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	notifyCtx, notifyCancel := context.WithCancel(context.Background())
	defer notifyCancel()

	notifier, stopNotifications := setupNotifications(notifyCtx, cfg, appLogger)
	defer stopNotifications()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, cfg.RateLimit)
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	router := setupRouter(cfg, db, notifier, rateLimiter, appLogger)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("api_base", cfg.GetAPIBasePath()),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("built", BuildTime),
			slog.Bool("redis_cache", db.Redis != nil),
			slog.Bool("payments", cfg.PaymentsEnabled()),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// setupNotifications picks the transports from config. With Kafka enabled the
// API publishes and an in-process consumer group delivers; otherwise delivery
// is direct.
func setupNotifications(ctx context.Context, cfg *config.Config, log *logger.Logger) (notifications.Service, func()) {
	var email notifications.EmailSender = notifications.NewLogEmailSender(log)
	if smtpCfg := notifications.SMTPConfigFrom(cfg.Email); smtpCfg.Validate() == nil {
		smtp, err := notifications.NewSMTPEmailService(smtpCfg, log)
		if err == nil {
			email = smtp
		}
	} else {
		log.Info("SMTP not configured, emails will be logged only")
	}

	var chat notifications.ChatSender
	if cfg.Alerts.ChatWebhookURL != "" {
		chat = notifications.NewChatWebhookSender(cfg.Alerts.ChatWebhookURL, cfg.Alerts.Timeout)
	}

	deliverer := notifications.NewDeliverer(email, chat, log)
	routing := notifications.AlertRouting{Chat: deliverer.HasChat(), StaffEmail: cfg.Alerts.StaffEmail}
	direct := func() {}

	if !cfg.Kafka.Enabled {
		return notifications.NewService(deliverer, routing, log), direct
	}

	producer, err := notifications.NewKafkaProducer(cfg.Kafka, log)
	if err != nil {
		log.Error("Kafka producer unavailable, delivering directly", slog.Any("error", err))
		return notifications.NewService(deliverer, routing, log), direct
	}

	consumer, err := notifications.NewKafkaConsumer(cfg.Kafka, deliverer, log)
	if err != nil {
		log.Error("Kafka consumer unavailable", slog.Any("error", err))
	} else {
		consumer.Start(ctx)
	}

	service := notifications.NewService(producer, routing, log)
	return service, func() {
		if err := service.Close(); err != nil {
			log.Error("Error closing notification producer", slog.Any("error", err))
		}
		if consumer != nil {
			if err := consumer.Stop(); err != nil {
				log.Error("Error stopping notification consumer", slog.Any("error", err))
			}
		}
	}
}

func setupRouter(cfg *config.Config, db *database.DB, notifier notifications.Service, rateLimiter *ratelimit.RateLimiter, log *logger.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestLogger(log), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, log))
	}

	routes.NewRouter(cfg, db, notifier, log).SetupRoutes(engine)
	return engine
}
