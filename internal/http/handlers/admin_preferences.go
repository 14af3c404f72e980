package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/agendasalud/clinic-platform/internal/http/middleware"
	"github.com/agendasalud/clinic-platform/internal/tenancy"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// AdminPreferencesHandler stores per-staff-user UI preferences. Today
// that is just the active tenant a staff member is working in.
type AdminPreferencesHandler struct {
	store  tenancy.PreferenceStore
	logger *logging.Logger
}

func NewAdminPreferencesHandler(store tenancy.PreferenceStore, logger *logging.Logger) *AdminPreferencesHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminPreferencesHandler{store: store, logger: logger}
}

type activeTenantPayload struct {
	TenantID string `json:"tenant_id"`
}

// GetActiveTenant returns the caller's stored active tenant, or 404 when
// none has been chosen yet.
// GET /admin/preferences/active-tenant
func (h *AdminPreferencesHandler) GetActiveTenant(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.StaffUserFromContext(r.Context())
	if !ok {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tenantID, err := h.store.ActiveTenant(r.Context(), userID)
	if err != nil {
		if errors.Is(err, tenancy.ErrNoPreference) {
			jsonError(w, http.StatusNotFound, "no active tenant set")
			return
		}
		h.logger.Error("active tenant lookup failed", "error", err, "user_id", userID)
		jsonError(w, http.StatusInternalServerError, "preference lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, activeTenantPayload{TenantID: tenantID})
}

// SetActiveTenant records the caller's working tenant. Last write wins.
// PUT /admin/preferences/active-tenant
func (h *AdminPreferencesHandler) SetActiveTenant(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.StaffUserFromContext(r.Context())
	if !ok {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload activeTenantPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	payload.TenantID = strings.TrimSpace(payload.TenantID)
	if payload.TenantID == "" {
		jsonError(w, http.StatusBadRequest, "tenant_id required")
		return
	}

	if err := h.store.SetActiveTenant(r.Context(), userID, payload.TenantID); err != nil {
		h.logger.Error("active tenant store failed", "error", err, "user_id", userID)
		jsonError(w, http.StatusInternalServerError, "preference store failed")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
