package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agendasalud/clinic-platform/internal/gateway"
	"github.com/agendasalud/clinic-platform/internal/schedule"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// PublicBookingHandler serves the token-based self-service flows: a
// patient follows an emailed link carrying an opaque token and can view,
// cancel or reschedule the booking it resolves to.
type PublicBookingHandler struct {
	client *gateway.Client
	logger *logging.Logger
}

func NewPublicBookingHandler(client *gateway.Client, logger *logging.Logger) *PublicBookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PublicBookingHandler{client: client, logger: logger}
}

func (h *PublicBookingHandler) configured(w http.ResponseWriter) bool {
	if h.client == nil {
		jsonError(w, http.StatusInternalServerError, "booking gateway not configured")
		return false
	}
	return true
}

// Lookup resolves a token into its booking projection.
// GET /public/bookings/{token}?action=cancel|reschedule
func (h *PublicBookingHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	token := chi.URLParam(r, "token")
	action := gateway.BookingAction(r.URL.Query().Get("action"))
	if action != gateway.ActionCancel && action != gateway.ActionReschedule {
		jsonError(w, http.StatusBadRequest, "action must be cancel or reschedule")
		return
	}

	lookup, err := h.client.Lookup(r.Context(), token, action)
	if err != nil {
		gatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lookup)
}

// Cancel consumes a cancel token.
// POST /public/bookings/{token}/cancel
func (h *PublicBookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	token := chi.URLParam(r, "token")
	if err := h.client.Cancel(r.Context(), token); err != nil {
		gatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

type rescheduleRequest struct {
	NewStartAt time.Time `json:"new_start_at"`
}

// Reschedule moves a booking to the selected slot.
// POST /public/bookings/{token}/reschedule
func (h *PublicBookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	token := chi.URLParam(r, "token")

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.NewStartAt.IsZero() {
		jsonError(w, http.StatusBadRequest, "new_start_at required")
		return
	}

	if err := h.client.Reschedule(r.Context(), token, req.NewStartAt); err != nil {
		gatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rescheduled"})
}

type availabilityResponse struct {
	Slots    []schedule.TimeSlot `json:"slots"`
	DayIndex schedule.DayIndex   `json:"day_index"`
}

// Availability lists open slots for a tenant between two dates and the
// per-day counts the calendar paints from.
// GET /public/availability/{slug}?from=2026-01-01&to=2026-01-31
func (h *PublicBookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	slug := chi.URLParam(r, "slug")

	q := r.URL.Query()
	from, err := time.Parse(schedule.DateLayout, q.Get("from"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse(schedule.DateLayout, q.Get("to"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		jsonError(w, http.StatusBadRequest, "to must not precede from")
		return
	}

	slots, err := h.client.Availability(r.Context(), slug, from, to)
	if err != nil {
		gatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{
		Slots:    slots,
		DayIndex: schedule.AggregateByDay(slots),
	})
}
