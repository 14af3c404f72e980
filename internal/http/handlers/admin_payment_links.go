package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agendasalud/clinic-platform/internal/paymentlink"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// BookingLister loads confirmed bookings with their service and payment
// relations already normalized.
type BookingLister interface {
	ListConfirmed(ctx context.Context, tenantID string) ([]paymentlink.BookingRow, error)
}

// AdminPaymentLinksHandler serves the staff payment-links screen: list
// unpaid confirmed bookings, filter them, and turn a selection into
// hosted payment links.
type AdminPaymentLinksHandler struct {
	repo    BookingLister
	builder *paymentlink.Builder
	logger  *logging.Logger
}

func NewAdminPaymentLinksHandler(repo BookingLister, builder *paymentlink.Builder, logger *logging.Logger) *AdminPaymentLinksHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminPaymentLinksHandler{repo: repo, builder: builder, logger: logger}
}

type unpaidBookingView struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	AmountCLP *int64 `json:"amount_clp"`
}

type unpaidBookingsResponse struct {
	Bookings      []unpaidBookingView `json:"bookings"`
	TotalCLP      int64               `json:"total_clp"`
	FilteredCount int                 `json:"filtered_count"`
}

// ListUnpaid returns the unpaid confirmed bookings for a tenant,
// optionally narrowed by a free-text query.
// GET /admin/tenants/{tenantID}/bookings/unpaid?q=
func (h *AdminPaymentLinksHandler) ListUnpaid(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		jsonError(w, http.StatusBadRequest, "missing tenantID")
		return
	}

	rows, err := h.repo.ListConfirmed(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("list confirmed bookings failed", "error", err, "tenant_id", tenantID)
		jsonError(w, http.StatusInternalServerError, "list bookings failed")
		return
	}

	unpaid := paymentlink.FilterUnpaid(rows)
	filtered := paymentlink.FilterSearch(unpaid, r.URL.Query().Get("q"))

	views := make([]unpaidBookingView, 0, len(filtered))
	selected := make(map[string]bool, len(filtered))
	for _, row := range filtered {
		views = append(views, unpaidBookingView{
			ID:        row.ID,
			Label:     paymentlink.Label(row),
			AmountCLP: paymentlink.ResolveAmount(row),
		})
		selected[row.ID] = true
	}

	writeJSON(w, http.StatusOK, unpaidBookingsResponse{
		Bookings:      views,
		TotalCLP:      paymentlink.RunningTotal(filtered, selected),
		FilteredCount: len(filtered),
	})
}

type generateLinksRequest struct {
	BookingIDs []string `json:"booking_ids"`
}

type generateLinksResponse struct {
	Results []paymentlink.ItemResult `json:"results"`
	Failed  int                      `json:"failed"`
}

// GenerateLinks creates payment links for the selected bookings,
// reporting the outcome per booking so one failure does not discard
// sibling links.
// POST /admin/tenants/{tenantID}/payment-links
func (h *AdminPaymentLinksHandler) GenerateLinks(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		jsonError(w, http.StatusBadRequest, "missing tenantID")
		return
	}

	var req generateLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if len(req.BookingIDs) == 0 {
		jsonError(w, http.StatusBadRequest, "booking_ids required")
		return
	}

	results := h.builder.GenerateLinksPerItem(r.Context(), req.BookingIDs)
	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		h.logger.Warn("payment link batch completed with failures",
			"tenant_id", tenantID, "requested", len(req.BookingIDs), "failed", failed)
	}

	status := http.StatusOK
	if failed > 0 && failed < len(results) {
		status = http.StatusMultiStatus
	} else if failed == len(results) {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, generateLinksResponse{Results: results, Failed: failed})
}
