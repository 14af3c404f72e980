// Package bookings reads the tenant's booking rows for the admin
// payment-links screen.
package bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agendasalud/clinic-platform/internal/paymentlink"
)

// Querier is the slice of pgxpool.Pool the repository uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository lists bookings with their service and payment relations.
type Repository struct {
	db Querier
}

// NewRepository initializes a repo backed by pgx.
func NewRepository(db Querier) *Repository {
	if db == nil {
		panic("bookings: pgx querier required")
	}
	return &Repository{db: db}
}

// ListConfirmed returns the tenant's confirmed bookings, newest payment
// first per booking. The payments relation is aggregated to JSON in SQL
// and normalized to a slice at this boundary so downstream logic never
// sees the single-or-list shape.
func (r *Repository) ListConfirmed(ctx context.Context, tenantID string) ([]paymentlink.BookingRow, error) {
	query := `
		SELECT b.id, b.customer_name, b.customer_email, b.start_at, b.status,
		       s.name, s.price_clp, s.payment_mode, s.deposit_amount_clp, s.currency,
		       COALESCE(
		           json_agg(json_build_object('status', p.status) ORDER BY p.created_at DESC)
		               FILTER (WHERE p.id IS NOT NULL),
		           'null'
		       ) AS payments
		FROM bookings b
		LEFT JOIN services s ON b.service_id = s.id
		LEFT JOIN payments p ON p.booking_id = b.id
		WHERE b.tenant_id = $1 AND b.status = 'confirmed'
		GROUP BY b.id, b.customer_name, b.customer_email, b.start_at, b.status,
		         s.name, s.price_clp, s.payment_mode, s.deposit_amount_clp, s.currency
		ORDER BY b.start_at ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("bookings: list confirmed: %w", err)
	}
	defer rows.Close()

	var out []paymentlink.BookingRow
	for rows.Next() {
		var (
			row          paymentlink.BookingRow
			customerName *string
			customerMail *string
			startAt      time.Time
			svcName      *string
			svcPrice     *int64
			svcMode      *string
			svcDeposit   *int64
			svcCurrency  *string
			paymentsJSON []byte
		)
		if err := rows.Scan(
			&row.ID, &customerName, &customerMail, &startAt, &row.Status,
			&svcName, &svcPrice, &svcMode, &svcDeposit, &svcCurrency,
			&paymentsJSON,
		); err != nil {
			return nil, fmt.Errorf("bookings: scan row: %w", err)
		}
		if customerName != nil {
			row.CustomerName = *customerName
		}
		if customerMail != nil {
			row.CustomerEmail = *customerMail
		}
		row.StartAt = startAt
		if svcName != nil {
			svc := &paymentlink.ServiceInfo{Name: *svcName, DepositAmountCLP: svcDeposit}
			if svcPrice != nil {
				svc.PriceCLP = *svcPrice
			}
			if svcMode != nil {
				svc.PaymentMode = *svcMode
			}
			if svcCurrency != nil {
				svc.Currency = *svcCurrency
			}
			row.Service = svc
		}
		payments, err := paymentlink.PaymentsFromJSON(json.RawMessage(paymentsJSON))
		if err != nil {
			return nil, fmt.Errorf("bookings: booking %s: %w", row.ID, err)
		}
		row.Payments = payments
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate rows: %w", err)
	}
	return out, nil
}
