// Package router wires the HTTP surface: public token flows and
// webhooks, plus JWT-protected staff endpoints.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agendasalud/clinic-platform/internal/http/handlers"
	httpmiddleware "github.com/agendasalud/clinic-platform/internal/http/middleware"
	"github.com/agendasalud/clinic-platform/internal/tenancy"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	PublicBookings *handlers.PublicBookingHandler
	PaymentWebhook *handlers.PaymentWebhookHandler
	Notifications  *handlers.NotificationHandler

	AdminPaymentLinks *handlers.AdminPaymentLinksHandler
	AdminPaymentStats *handlers.AdminPaymentStatsHandler
	AdminPreferences  *handlers.AdminPreferencesHandler
	PreferenceStore   tenancy.PreferenceStore

	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (token flows, webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		if cfg.PublicBookings != nil {
			public.Route("/public", func(r chi.Router) {
				r.Get("/bookings/{token}", cfg.PublicBookings.Lookup)
				r.Post("/bookings/{token}/cancel", cfg.PublicBookings.Cancel)
				r.Post("/bookings/{token}/reschedule", cfg.PublicBookings.Reschedule)
				r.Get("/availability/{slug}", cfg.PublicBookings.Availability)
			})
		}

		if cfg.PaymentWebhook != nil {
			public.Post("/webhooks/mercadopago", cfg.PaymentWebhook.HandlePost)
			public.Get("/webhooks/mercadopago", cfg.PaymentWebhook.HandleGet)
		}

		if cfg.Notifications != nil {
			public.Post("/notify", cfg.Notifications.Handle)
		}

		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Staff routes (protected by JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Use(httpmiddleware.ResolveTenant(cfg.PreferenceStore, cfg.Logger))

			if cfg.AdminPreferences != nil {
				admin.Get("/preferences/active-tenant", cfg.AdminPreferences.GetActiveTenant)
				admin.Put("/preferences/active-tenant", cfg.AdminPreferences.SetActiveTenant)
			}

			admin.Route("/tenants/{tenantID}", func(tenant chi.Router) {
				if cfg.AdminPaymentLinks != nil {
					tenant.Get("/bookings/unpaid", cfg.AdminPaymentLinks.ListUnpaid)
					tenant.Post("/payment-links", cfg.AdminPaymentLinks.GenerateLinks)
				}
				if cfg.AdminPaymentStats != nil {
					tenant.Get("/payments/stats", cfg.AdminPaymentStats.GetStats)
				}
			})
		})
	}

	return r
}
