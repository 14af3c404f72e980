// Package gateway invokes the hosted function gateway by name: public
// booking actions, availability queries, payment link generation and the
// payment provider webhook target.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agendasalud/clinic-platform/internal/observability/metrics"
	"github.com/agendasalud/clinic-platform/internal/schedule"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

var tracer = otel.Tracer("agendasalud.internal.gateway")

// Hosted function names. The gateway owns their semantics; this client
// only shapes payloads and surfaces results.
const (
	FnAvailability = "public_availability"
	FnLookup       = "public_booking_action_lookup"
	FnCancel       = "public_booking_action_cancel"
	FnReschedule   = "public_booking_action_reschedule"
	FnPaymentLink  = "create_booking_payment_link"
)

type authMode int

const (
	// authAnon is used by the public token flows: the token in the
	// payload replaces session auth.
	authAnon authMode = iota
	// authService carries the service key for internal administrative use.
	authService
)

// Client calls named functions on the hosted gateway. One attempt per
// call; retries are always a manual user action upstream.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.GatewayMetrics
}

// Config holds gateway client configuration.
type Config struct {
	BaseURL    string
	AnonKey    string
	ServiceKey string
	Timeout    time.Duration
}

// NewClient creates a gateway client. Returns nil when no base URL is
// configured so callers can treat the gateway as absent.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithMetrics attaches prometheus instrumentation to every invocation.
func (c *Client) WithMetrics(m *metrics.GatewayMetrics) *Client {
	c.metrics = m
	return c
}

// Lookup fetches the booking projection for a public token. A consumed
// or invalid token yields a NotFoundError carrying the server message.
func (c *Client) Lookup(ctx context.Context, token string, action BookingAction) (*BookingLookup, error) {
	payload := map[string]any{"token": token, "action": string(action)}
	body, err := c.invoke(ctx, FnLookup, payload, authAnon)
	if err != nil {
		return nil, err
	}
	var lookup BookingLookup
	if err := json.Unmarshal(body, &lookup); err != nil {
		return nil, &RequestError{Function: FnLookup, Message: "malformed response"}
	}
	return &lookup, nil
}

// Cancel consumes the token. Whether a second call on the same token is
// safe is decided by the gateway, not here.
func (c *Client) Cancel(ctx context.Context, token string) error {
	_, err := c.invoke(ctx, FnCancel, map[string]any{"token": token}, authAnon)
	return err
}

// Reschedule moves the booking to newStartAt. Same idempotency caveat as
// Cancel.
func (c *Client) Reschedule(ctx context.Context, token string, newStartAt time.Time) error {
	payload := map[string]any{
		"token":        token,
		"new_start_at": newStartAt.UTC().Format(time.RFC3339),
	}
	_, err := c.invoke(ctx, FnReschedule, payload, authAnon)
	return err
}

// Availability lists open slots for a tenant slug between two dates,
// inclusive from the caller's perspective. Exact boundary handling is the
// remote function's contract.
func (c *Client) Availability(ctx context.Context, slug string, start, end time.Time) ([]schedule.TimeSlot, error) {
	payload := map[string]any{
		"slug":       slug,
		"start_date": schedule.FormatDate(start),
		"end_date":   schedule.FormatDate(end),
	}
	body, err := c.invoke(ctx, FnAvailability, payload, authAnon)
	if err != nil {
		return nil, err
	}
	var out struct {
		Slots []schedule.TimeSlot `json:"slots"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &RequestError{Function: FnAvailability, Message: "malformed response"}
	}
	return out.Slots, nil
}

// CreatePaymentLink requests a payment link for one booking. The remote
// operation is assumed safe to repeat: it returns the same or a fresh
// valid link.
func (c *Client) CreatePaymentLink(ctx context.Context, bookingID string) (*PaymentLinkResult, error) {
	body, err := c.invoke(ctx, FnPaymentLink, map[string]any{"booking_id": bookingID}, authService)
	if err != nil {
		return nil, err
	}
	var result PaymentLinkResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &RequestError{Function: FnPaymentLink, Message: "malformed response"}
	}
	return &result, nil
}

// ForwardWebhook relays a provider notification to the named webhook
// function, returning the downstream status code and body unmodified.
func (c *Client) ForwardWebhook(ctx context.Context, function string, payload []byte) (int, []byte, error) {
	start := time.Now()
	status, body, err := c.post(ctx, function, payload, authService)
	c.observe(function, status, err, time.Since(start))
	if err != nil {
		return 0, nil, &RequestError{Function: function, Message: err.Error()}
	}
	return status, body, nil
}

// invoke posts JSON to a named function and returns the response body on
// 2xx. Non-2xx responses become NotFoundError (404) or RequestError with
// the server-supplied message.
func (c *Client) invoke(ctx context.Context, function string, payload any, mode authMode) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, &RequestError{Function: function, Message: err.Error()}
	}

	start := time.Now()
	status, body, err := c.post(ctx, function, encoded, mode)
	c.observe(function, status, err, time.Since(start))
	if err != nil {
		c.logger.Error("gateway call failed", "function", function, "error", err)
		return nil, &RequestError{Function: function, Message: err.Error()}
	}

	if status == http.StatusNotFound {
		return nil, &NotFoundError{Message: serverMessage(body)}
	}
	if status < 200 || status >= 300 {
		return nil, &RequestError{Function: function, Status: status, Message: serverMessage(body)}
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, function string, payload []byte, mode authMode) (int, []byte, error) {
	ctx, span := tracer.Start(ctx, "gateway.invoke")
	span.SetAttributes(attribute.String("gateway.function", function))
	defer span.End()

	url := c.baseURL + "/functions/v1/" + function
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	switch mode {
	case authService:
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	default:
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func (c *Client) observe(function string, status int, err error, elapsed time.Duration) {
	label := strconv.Itoa(status)
	if err != nil {
		label = "error"
	}
	c.metrics.ObserveCall(function, label, elapsed.Seconds())
}

// serverMessage extracts {"error": "..."} or {"message": "..."} from a
// response body, falling back to the raw body text.
func serverMessage(body []byte) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "request failed"
	}
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
