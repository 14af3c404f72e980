package paymentlink

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/agendasalud/clinic-platform/internal/gateway"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// minQueryLen keeps the search inert while the user is still typing.
const minQueryLen = 3

// LinkClient is the slice of the gateway client the builder needs.
type LinkClient interface {
	CreatePaymentLink(ctx context.Context, bookingID string) (*gateway.PaymentLinkResult, error)
}

// Builder accumulates generated payment links keyed by booking id.
// Results from successive batches pile up; nothing is cleared between
// generations.
type Builder struct {
	client LinkClient
	logger *logging.Logger

	mu      sync.Mutex
	results map[string]gateway.PaymentLinkResult
}

// NewBuilder creates a payment link builder.
func NewBuilder(client LinkClient, logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Builder{
		client:  client,
		logger:  logger,
		results: make(map[string]gateway.PaymentLinkResult),
	}
}

// FilterUnpaid keeps bookings whose authoritative payment (first record)
// is not paid; bookings without any payment record count as unpaid.
func FilterUnpaid(rows []BookingRow) []BookingRow {
	out := make([]BookingRow, 0, len(rows))
	for _, row := range rows {
		if len(row.Payments) > 0 && row.Payments[0].Status == "paid" {
			continue
		}
		out = append(out, row)
	}
	return out
}

// FilterSearch applies the free-text query against each row's composed
// label, case-insensitively. Queries shorter than three characters match
// everything: the search only engages once it is selective enough.
func FilterSearch(rows []BookingRow, query string) []BookingRow {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLen {
		return rows
	}
	needle := strings.ToLower(query)
	out := make([]BookingRow, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(Label(row)), needle) {
			out = append(out, row)
		}
	}
	return out
}

// RunningTotal sums resolved amounts over the rows that are both
// currently filtered and currently selected. A deselected or filtered-out
// booking drops from the total even if its id lingers in the selection
// set.
func RunningTotal(filtered []BookingRow, selected map[string]bool) int64 {
	var total int64
	for _, row := range filtered {
		if !selected[row.ID] {
			continue
		}
		if amount := ResolveAmount(row); amount != nil {
			total += *amount
		}
	}
	return total
}

// GenerateLinks requests one link per selected booking, all requests in
// flight at once, and commits results only when every request succeeded.
// On any failure the whole batch reports the first error and nothing is
// committed; re-running re-requests every id, which the remote operation
// tolerates.
func (b *Builder) GenerateLinks(ctx context.Context, bookingIDs []string) error {
	if len(bookingIDs) == 0 {
		return nil
	}

	type outcome struct {
		id     string
		result *gateway.PaymentLinkResult
		err    error
	}

	results := make([]outcome, len(bookingIDs))
	var wg sync.WaitGroup
	for i, id := range bookingIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			result, err := b.client.CreatePaymentLink(ctx, id)
			results[i] = outcome{id: id, result: result, err: err}
		}(i, id)
	}
	wg.Wait()

	for _, res := range results {
		if res.err != nil {
			b.logger.Error("payment link batch failed", "booking_id", res.id, "error", res.err)
			return fmt.Errorf("paymentlink: generate for %s: %w", res.id, res.err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, res := range results {
		b.results[res.id] = *res.result
	}
	return nil
}

// ItemResult reports the outcome for a single booking in a per-item
// batch.
type ItemResult struct {
	BookingID string                     `json:"booking_id"`
	Link      *gateway.PaymentLinkResult `json:"link,omitempty"`
	Error     string                     `json:"error,omitempty"`
}

// GenerateLinksPerItem is the partial-success variant: each booking's
// link is committed as soon as its own request succeeds, and failures are
// reported per item instead of discarding sibling successes.
func (b *Builder) GenerateLinksPerItem(ctx context.Context, bookingIDs []string) []ItemResult {
	results := make([]ItemResult, len(bookingIDs))
	var wg sync.WaitGroup
	for i, id := range bookingIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			result, err := b.client.CreatePaymentLink(ctx, id)
			if err != nil {
				results[i] = ItemResult{BookingID: id, Error: err.Error()}
				return
			}
			b.mu.Lock()
			b.results[id] = *result
			b.mu.Unlock()
			results[i] = ItemResult{BookingID: id, Link: result}
		}(i, id)
	}
	wg.Wait()
	return results
}

// Results returns a copy of the accumulated links keyed by booking id.
func (b *Builder) Results() map[string]gateway.PaymentLinkResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]gateway.PaymentLinkResult, len(b.results))
	for id, result := range b.results {
		out[id] = result
	}
	return out
}
