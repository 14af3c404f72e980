package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/agendasalud/clinic-platform/cmd/mainconfig"
	"github.com/agendasalud/clinic-platform/internal/api/router"
	"github.com/agendasalud/clinic-platform/internal/bookings"
	appconfig "github.com/agendasalud/clinic-platform/internal/config"
	"github.com/agendasalud/clinic-platform/internal/gateway"
	"github.com/agendasalud/clinic-platform/internal/http/handlers"
	"github.com/agendasalud/clinic-platform/internal/notify"
	"github.com/agendasalud/clinic-platform/internal/observability/metrics"
	"github.com/agendasalud/clinic-platform/internal/paymentlink"
	"github.com/agendasalud/clinic-platform/internal/tenancy"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Postgres: pgx pool for repositories plus database/sql for the
	// stats handler and migrations tooling.
	var (
		pool    *pgxpool.Pool
		statsDB *sql.DB
	)
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		statsDB, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer func() { _ = statsDB.Close() }()
	} else {
		logger.Warn("DATABASE_URL not set, booking listings and stats disabled")
	}

	// Redis-backed staff preferences, with an in-memory fallback for
	// single-instance development runs.
	var prefStore tenancy.PreferenceStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = redisClient.Close() }()
		prefStore = tenancy.NewRedisPreferenceStore(redisClient)
	} else {
		logger.Warn("REDIS_ADDR not set, using in-memory preference store")
		prefStore = tenancy.NewMemoryPreferenceStore()
	}

	registry := prometheus.NewRegistry()
	gatewayMetrics := metrics.NewGatewayMetrics(registry)

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:    cfg.GatewayBaseURL,
		AnonKey:    cfg.GatewayAnonKey,
		ServiceKey: cfg.GatewayServiceKey,
		Timeout:    cfg.GatewayTimeout,
	}, logger)
	if gatewayClient != nil {
		gatewayClient = gatewayClient.WithMetrics(gatewayMetrics)
	} else {
		logger.Warn("GATEWAY_BASE_URL not set, booking flows and webhooks disabled")
	}

	emailSender := buildEmailSender(ctx, cfg, logger)
	notifyService := notify.NewService(emailSender, cfg.NotifyAdminEmail, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		Notifications:      handlers.NewNotificationHandler(notifyService, cfg.NotifySecret, logger),
		AdminPreferences:   handlers.NewAdminPreferencesHandler(prefStore, logger),
		PreferenceStore:    prefStore,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: splitOrigins(cfg.CORSAllowedOrigins),
	}
	if gatewayClient != nil {
		routerCfg.PublicBookings = handlers.NewPublicBookingHandler(gatewayClient, logger)
		routerCfg.PaymentWebhook = handlers.NewPaymentWebhookHandler(gatewayClient, cfg.WebhookFunction, logger).
			WithMetrics(gatewayMetrics)
	}
	if pool != nil && gatewayClient != nil {
		repo := bookings.NewRepository(pool)
		builder := paymentlink.NewBuilder(gatewayClient, logger)
		routerCfg.AdminPaymentLinks = handlers.NewAdminPaymentLinksHandler(repo, builder, logger)
	}
	if statsDB != nil {
		routerCfg.AdminPaymentStats = handlers.NewAdminPaymentStatsHandler(statsDB, logger)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildEmailSender selects the configured email transport, falling back
// to the logging stub so the notify endpoint keeps working in dev.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("sendgrid not configured, using stub email sender")
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
