package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/agendasalud/clinic-platform/internal/tenancy"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// TenantHeader names the explicit tenant override header.
const TenantHeader = "X-Tenant-Id"

// ResolveTenant places the working tenant id in the request context for
// staff requests. An explicit X-Tenant-Id header wins; otherwise the staff
// user's stored active-tenant preference is consulted. Requests without
// either pass through untouched, so handlers that require a tenant can
// reject them with a useful message.
func ResolveTenant(store tenancy.PreferenceStore, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := strings.TrimSpace(r.Header.Get(TenantHeader))
			if tenantID == "" && store != nil {
				if userID, ok := StaffUserFromContext(r.Context()); ok {
					stored, err := store.ActiveTenant(r.Context(), userID)
					switch {
					case err == nil:
						tenantID = stored
					case errors.Is(err, tenancy.ErrNoPreference):
						// No stored preference yet, nothing to resolve.
					default:
						logger.Warn("tenant preference lookup failed", "error", err, "user_id", userID)
					}
				}
			}
			if tenantID != "" {
				r = r.WithContext(tenancy.WithTenantID(r.Context(), tenantID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
