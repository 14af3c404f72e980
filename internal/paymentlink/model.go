// Package paymentlink selects unpaid confirmed bookings and turns a
// multi-selection of them into hosted payment links.
package paymentlink

import (
	"encoding/json"
	"fmt"
	"time"
)

// ServiceInfo is the service relation attached to a booking row.
type ServiceInfo struct {
	Name             string `json:"name"`
	PriceCLP         int64  `json:"price_clp"`
	PaymentMode      string `json:"payment_mode"`
	DepositAmountCLP *int64 `json:"deposit_amount_clp,omitempty"`
	Currency         string `json:"currency,omitempty"`
}

// PaymentRecord is one payment attempt attached to a booking.
type PaymentRecord struct {
	Status string `json:"status"`
}

// BookingRow is a confirmed booking as listed on the payment-links
// screen. Payments is already normalized: zero or more records, newest
// first, with the first element authoritative.
type BookingRow struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	StartAt       time.Time       `json:"start_at"`
	Status        string          `json:"status"`
	Service       *ServiceInfo    `json:"services,omitempty"`
	Payments      []PaymentRecord `json:"payments,omitempty"`
}

// PaymentsFromJSON coerces the polymorphic payments relation (single
// object, list, or null) into a slice so downstream logic has one shape
// to handle.
func PaymentsFromJSON(raw json.RawMessage) ([]PaymentRecord, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []PaymentRecord
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var single PaymentRecord
	if err := json.Unmarshal(raw, &single); err == nil {
		if single.Status == "" {
			return nil, nil
		}
		return []PaymentRecord{single}, nil
	}
	// json "null" and empty objects fall out above; anything else is a
	// shape we do not understand.
	var null any
	if err := json.Unmarshal(raw, &null); err == nil && null == nil {
		return nil, nil
	}
	return nil, fmt.Errorf("paymentlink: unrecognized payments shape: %s", string(raw))
}

// ResolveAmount computes the owed amount for a booking: the deposit
// amount under deposit mode (falling back to the full price when the
// deposit is unset), otherwise the full price. Returns nil when the
// service relation is missing, which should not occur for confirmed
// bookings.
func ResolveAmount(row BookingRow) *int64 {
	if row.Service == nil {
		return nil
	}
	if row.Service.PaymentMode == "deposit" && row.Service.DepositAmountCLP != nil {
		amount := *row.Service.DepositAmountCLP
		return &amount
	}
	amount := row.Service.PriceCLP
	return &amount
}

var spanishMonths = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// FormatStartAt renders a booking start in the short Spanish form used
// in row labels, e.g. "12 ene 2026, 15:00".
func FormatStartAt(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d %s %d, %02d:%02d",
		t.Day(), spanishMonths[int(t.Month())-1], t.Year(), t.Hour(), t.Minute())
}

// Label composes the searchable row label.
func Label(row BookingRow) string {
	service := ""
	if row.Service != nil {
		service = row.Service.Name
	}
	return fmt.Sprintf("%s · %s · %s", row.CustomerName, service, FormatStartAt(row.StartAt))
}
