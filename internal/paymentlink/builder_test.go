package paymentlink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendasalud/clinic-platform/internal/gateway"
)

type mockLinkClient struct {
	mu     sync.Mutex
	calls  map[string]int
	failOn map[string]bool
}

func newMockLinkClient(failOn ...string) *mockLinkClient {
	fail := make(map[string]bool, len(failOn))
	for _, id := range failOn {
		fail[id] = true
	}
	return &mockLinkClient{calls: make(map[string]int), failOn: fail}
}

func (m *mockLinkClient) CreatePaymentLink(ctx context.Context, bookingID string) (*gateway.PaymentLinkResult, error) {
	m.mu.Lock()
	m.calls[bookingID]++
	m.mu.Unlock()
	if m.failOn[bookingID] {
		return nil, &gateway.RequestError{Function: gateway.FnPaymentLink, Message: "link generation failed"}
	}
	return &gateway.PaymentLinkResult{
		PaymentID:   "pay-" + bookingID,
		RedirectURL: "https://pay.example.com/" + bookingID,
	}, nil
}

func unpaidFixture() []BookingRow {
	start := time.Date(2026, 1, 12, 15, 0, 0, 0, time.UTC)
	return []BookingRow{
		{
			ID: "b-1", CustomerName: "Ana Pérez", StartAt: start, Status: "confirmed",
			Service:  &ServiceInfo{Name: "Evaluación", PriceCLP: 50000, PaymentMode: "deposit", DepositAmountCLP: int64p(20000)},
			Payments: []PaymentRecord{{Status: "pending"}},
		},
		{
			ID: "b-2", CustomerName: "Benjamín Soto", StartAt: start.Add(24 * time.Hour), Status: "confirmed",
			Service: &ServiceInfo{Name: "Kinesiología", PriceCLP: 35000, PaymentMode: "full"},
		},
		{
			ID: "b-3", CustomerName: "Carla Muñoz", StartAt: start.Add(48 * time.Hour), Status: "confirmed",
			Service:  &ServiceInfo{Name: "Evaluación", PriceCLP: 50000, PaymentMode: "full"},
			Payments: []PaymentRecord{{Status: "paid"}},
		},
	}
}

func TestFilterUnpaid(t *testing.T) {
	rows := FilterUnpaid(unpaidFixture())
	require.Len(t, rows, 2)
	assert.Equal(t, "b-1", rows[0].ID, "pending payment counts as unpaid")
	assert.Equal(t, "b-2", rows[1].ID, "no payment counts as unpaid")
}

func TestFilterUnpaidFirstRecordAuthoritative(t *testing.T) {
	rows := []BookingRow{{
		ID:       "b-9",
		Payments: []PaymentRecord{{Status: "paid"}, {Status: "pending"}},
	}}
	assert.Empty(t, FilterUnpaid(rows), "only the first payment record decides")
}

func TestFilterSearchMatchesLabel(t *testing.T) {
	rows := unpaidFixture()
	assert.Len(t, FilterSearch(rows, "ana"), 1)
	assert.Equal(t, "b-1", FilterSearch(rows, "ana")[0].ID)
	assert.Len(t, FilterSearch(rows, "EVALUACIÓN"), 2, "case-insensitive service match")
	assert.Len(t, FilterSearch(rows, "13 ene"), 1, "date text is searchable")
	assert.Empty(t, FilterSearch(rows, "zzz"))
}

func TestFilterSearchInertBelowThreeChars(t *testing.T) {
	rows := unpaidFixture()
	assert.Len(t, FilterSearch(rows, ""), 3)
	assert.Len(t, FilterSearch(rows, "an"), 3, "two characters leave the list untouched")
	assert.Len(t, FilterSearch(rows, "  an  "), 3)
}

func TestRunningTotal(t *testing.T) {
	rows := unpaidFixture()
	selected := map[string]bool{"b-1": true, "b-2": true, "b-3": true}

	// b-1 deposit 20000 + b-2 full 35000 + b-3 full 50000.
	assert.Equal(t, int64(105000), RunningTotal(rows, selected))

	// Filtering a selected booking out removes it from the total.
	filtered := FilterSearch(FilterUnpaid(rows), "")
	assert.Equal(t, int64(55000), RunningTotal(filtered, selected))

	// Deselecting removes it too.
	selected["b-2"] = false
	assert.Equal(t, int64(20000), RunningTotal(filtered, selected))
}

func TestGenerateLinksCommitsAll(t *testing.T) {
	client := newMockLinkClient()
	builder := NewBuilder(client, nil)

	require.NoError(t, builder.GenerateLinks(context.Background(), []string{"b-1", "b-2"}))
	results := builder.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "pay-b-1", results["b-1"].PaymentID)
	assert.Equal(t, "https://pay.example.com/b-2", results["b-2"].RedirectURL)
}

func TestGenerateLinksAllOrNothing(t *testing.T) {
	client := newMockLinkClient("b-2")
	builder := NewBuilder(client, nil)

	err := builder.GenerateLinks(context.Background(), []string{"b-1", "b-2", "b-3"})
	require.Error(t, err)
	assert.Empty(t, builder.Results(), "sibling successes are not committed")
	assert.Equal(t, 1, client.calls["b-1"], "every request still ran once")
	assert.Equal(t, 1, client.calls["b-3"])

	// Retrying re-requests every selected booking, including those that
	// already succeeded; the remote operation tolerates repeats.
	client.failOn = map[string]bool{}
	require.NoError(t, builder.GenerateLinks(context.Background(), []string{"b-1", "b-2", "b-3"}))
	assert.Len(t, builder.Results(), 3)
	assert.Equal(t, 2, client.calls["b-1"])
}

func TestGenerateLinksAccumulatesAcrossBatches(t *testing.T) {
	builder := NewBuilder(newMockLinkClient(), nil)
	require.NoError(t, builder.GenerateLinks(context.Background(), []string{"b-1"}))
	require.NoError(t, builder.GenerateLinks(context.Background(), []string{"b-2"}))
	assert.Len(t, builder.Results(), 2, "prior entries are never cleared")
}

func TestGenerateLinksEmptySelection(t *testing.T) {
	client := newMockLinkClient()
	builder := NewBuilder(client, nil)
	require.NoError(t, builder.GenerateLinks(context.Background(), nil))
	assert.Empty(t, client.calls)
}

func TestGenerateLinksPerItemPartialSuccess(t *testing.T) {
	client := newMockLinkClient("b-2")
	builder := NewBuilder(client, nil)

	results := builder.GenerateLinksPerItem(context.Background(), []string{"b-1", "b-2", "b-3"})
	require.Len(t, results, 3)
	assert.NotNil(t, results[0].Link)
	assert.Empty(t, results[0].Error)
	assert.Nil(t, results[1].Link)
	assert.Contains(t, results[1].Error, "link generation failed")
	assert.NotNil(t, results[2].Link)

	committed := builder.Results()
	assert.Len(t, committed, 2, "successes commit despite the sibling failure")
	assert.Contains(t, committed, "b-1")
	assert.Contains(t, committed, "b-3")
}
