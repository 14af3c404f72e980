package gateway

import "time"

// BookingAction distinguishes the two public token flows.
type BookingAction string

const (
	ActionCancel     BookingAction = "cancel"
	ActionReschedule BookingAction = "reschedule"
)

// Booking is the read-only projection returned by a token lookup.
type Booking struct {
	ID           string    `json:"id"`
	StartAt      time.Time `json:"start_at"`
	Status       string    `json:"status"`
	CustomerName string    `json:"customer_name"`
}

// Service describes the booked service in a lookup projection.
type Service struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// BookingLookup is the full projection fetched by an opaque public token.
// A token resolves to at most one booking.
type BookingLookup struct {
	Booking Booking `json:"booking"`
	Service Service `json:"service"`
	Slug    string  `json:"slug,omitempty"`
}

// PaymentLinkResult is returned by create_booking_payment_link.
type PaymentLinkResult struct {
	PaymentID   string `json:"payment_id"`
	RedirectURL string `json:"redirect_url,omitempty"`
}
