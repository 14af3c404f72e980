package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/agendasalud/clinic-platform/internal/notify"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// NotificationHandler exposes the booking-email endpoint used by the
// function gateway after a confirmed state change.
type NotificationHandler struct {
	service *notify.Service
	secret  string
	logger  *logging.Logger
}

func NewNotificationHandler(service *notify.Service, secret string, logger *logging.Logger) *NotificationHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationHandler{service: service, secret: secret, logger: logger}
}

// Handle sends one booking notification email.
// POST /notify
func (h *NotificationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload notify.BookingNotification
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.service.Send(r.Context(), payload); err != nil {
		switch {
		case errors.Is(err, notify.ErrInvalidNotification):
			jsonError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("notification send failed", "error", err, "type", string(payload.Type))
			jsonError(w, http.StatusInternalServerError, "send failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *NotificationHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return false
	}
	token := strings.TrimPrefix(auth, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}
