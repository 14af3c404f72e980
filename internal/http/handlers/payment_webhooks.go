package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/agendasalud/clinic-platform/internal/observability/metrics"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// WebhookForwarder relays a raw provider payload downstream and reports
// the downstream response.
type WebhookForwarder interface {
	ForwardWebhook(ctx context.Context, function string, payload []byte) (int, []byte, error)
}

// PaymentWebhookHandler accepts inbound payment-provider notifications
// and forwards them to the configured webhook function. The provider
// retries on its own schedule, so the downstream status and body are
// passed back verbatim.
type PaymentWebhookHandler struct {
	forwarder WebhookForwarder
	function  string
	metrics   *metrics.GatewayMetrics
	logger    *logging.Logger
}

// NewPaymentWebhookHandler creates a webhook forwarding handler.
// forwarder may be nil when the gateway is not configured; requests then
// fail with 500.
func NewPaymentWebhookHandler(forwarder WebhookForwarder, function string, logger *logging.Logger) *PaymentWebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PaymentWebhookHandler{forwarder: forwarder, function: function, logger: logger}
}

// WithMetrics attaches webhook counters. Safe to skip in tests.
func (h *PaymentWebhookHandler) WithMetrics(m *metrics.GatewayMetrics) *PaymentWebhookHandler {
	h.metrics = m
	return h
}

// HandlePost forwards a POST notification body unmodified.
// POST /webhooks/mercadopago
func (h *PaymentWebhookHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if h.forwarder == nil || h.function == "" {
		h.logger.Error("webhook forwarding not configured")
		jsonError(w, http.StatusInternalServerError, "webhook forwarding not configured")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.relay(w, r, payload)
}

// HandleGet forwards the provider's redirect-style GET variant, which
// carries the notification in query parameters. The payload is reshaped
// into the same JSON the POST variant carries.
// GET /webhooks/mercadopago
func (h *PaymentWebhookHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if h.forwarder == nil || h.function == "" {
		h.logger.Error("webhook forwarding not configured")
		jsonError(w, http.StatusInternalServerError, "webhook forwarding not configured")
		return
	}

	q := r.URL.Query()
	id := q.Get("id")
	if id == "" {
		id = q.Get("data.id")
	}
	if id == "" {
		jsonError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	payload, err := json.Marshal(map[string]any{
		"id":    id,
		"type":  q.Get("type"),
		"topic": q.Get("topic"),
		"data":  map[string]string{"id": id},
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "encode payload")
		return
	}

	h.relay(w, r, payload)
}

func (h *PaymentWebhookHandler) relay(w http.ResponseWriter, r *http.Request, payload []byte) {
	status, body, err := h.forwarder.ForwardWebhook(r.Context(), h.function, payload)
	if err != nil {
		h.logger.Error("webhook forward failed", "function", h.function, "error", err)
		jsonError(w, http.StatusBadGateway, "forward failed")
		return
	}

	h.metrics.ObserveWebhookForward(r.Method, strconv.Itoa(status))
	h.logger.Info("webhook forwarded", "function", h.function, "status", status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
