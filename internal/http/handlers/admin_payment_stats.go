package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"

	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// settledStatuses are the payment states counted as collected revenue.
var settledStatuses = []string{"paid", "accredited"}

// openStatuses are the payment states still awaiting the provider.
var openStatuses = []string{"pending", "in_process"}

// AdminPaymentStatsHandler summarizes payment state per tenant for the
// staff dashboard.
type AdminPaymentStatsHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewAdminPaymentStatsHandler(db *sql.DB, logger *logging.Logger) *AdminPaymentStatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminPaymentStatsHandler{db: db, logger: logger}
}

// PaymentStatsResponse contains per-tenant payment aggregates.
type PaymentStatsResponse struct {
	TenantID        string           `json:"tenant_id"`
	CollectedCLP    int64            `json:"collected_clp"`
	CollectedCount  int              `json:"collected_count"`
	PendingCount    int              `json:"pending_count"`
	UnpaidBookings  int              `json:"unpaid_bookings"`
	StatusBreakdown map[string]int64 `json:"status_breakdown"`
}

// GetStats returns the payment aggregates for a tenant.
// GET /admin/tenants/{tenantID}/payments/stats
func (h *AdminPaymentStatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		jsonError(w, http.StatusBadRequest, "missing tenantID")
		return
	}
	if h.db == nil {
		jsonError(w, http.StatusInternalServerError, "stats store not configured")
		return
	}

	stats := PaymentStatsResponse{
		TenantID:        tenantID,
		StatusBreakdown: map[string]int64{},
	}

	err := h.db.QueryRowContext(r.Context(),
		`SELECT COALESCE(SUM(p.amount_clp), 0), COUNT(*)
		 FROM payments p
		 JOIN bookings b ON b.id = p.booking_id
		 WHERE b.tenant_id = $1 AND p.status = ANY($2)`,
		tenantID, pq.Array(settledStatuses),
	).Scan(&stats.CollectedCLP, &stats.CollectedCount)
	if err != nil {
		h.logger.Error("payment stats query failed", "error", err, "tenant_id", tenantID)
		jsonError(w, http.StatusInternalServerError, "stats query failed")
		return
	}

	err = h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*)
		 FROM payments p
		 JOIN bookings b ON b.id = p.booking_id
		 WHERE b.tenant_id = $1 AND p.status = ANY($2)`,
		tenantID, pq.Array(openStatuses),
	).Scan(&stats.PendingCount)
	if err != nil {
		h.logger.Error("payment stats query failed", "error", err, "tenant_id", tenantID)
		jsonError(w, http.StatusInternalServerError, "stats query failed")
		return
	}

	err = h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*)
		 FROM bookings b
		 WHERE b.tenant_id = $1 AND b.status = 'confirmed'
		   AND NOT EXISTS (
		     SELECT 1 FROM payments p
		     WHERE p.booking_id = b.id AND p.status = ANY($2)
		   )`,
		tenantID, pq.Array(settledStatuses),
	).Scan(&stats.UnpaidBookings)
	if err != nil {
		h.logger.Error("payment stats query failed", "error", err, "tenant_id", tenantID)
		jsonError(w, http.StatusInternalServerError, "stats query failed")
		return
	}

	rows, err := h.db.QueryContext(r.Context(),
		`SELECT p.status, COUNT(*)
		 FROM payments p
		 JOIN bookings b ON b.id = p.booking_id
		 WHERE b.tenant_id = $1
		 GROUP BY p.status`,
		tenantID,
	)
	if err != nil {
		h.logger.Error("payment stats query failed", "error", err, "tenant_id", tenantID)
		jsonError(w, http.StatusInternalServerError, "stats query failed")
		return
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			jsonError(w, http.StatusInternalServerError, "stats scan failed")
			return
		}
		stats.StatusBreakdown[strings.ToLower(status)] = count
	}
	if err := rows.Err(); err != nil {
		jsonError(w, http.StatusInternalServerError, "stats query failed")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
