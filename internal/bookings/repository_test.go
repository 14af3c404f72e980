package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func int64p(v int64) *int64 { return &v }

func bookingColumns() []string {
	return []string{
		"id", "customer_name", "customer_email", "start_at", "status",
		"name", "price_clp", "payment_mode", "deposit_amount_clp", "currency",
		"payments",
	}
}

func TestListConfirmed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	start := time.Date(2026, 1, 12, 15, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(bookingColumns()).
		AddRow(
			"b-1", strp("Ana Pérez"), strp("ana@example.com"), start, "confirmed",
			strp("Evaluación"), int64p(50000), strp("deposit"), int64p(20000), strp("CLP"),
			[]byte(`[{"status":"pending"}]`),
		).
		AddRow(
			"b-2", strp("Benjamín Soto"), (*string)(nil), start.Add(time.Hour), "confirmed",
			strp("Kinesiología"), int64p(35000), strp("full"), (*int64)(nil), strp("CLP"),
			[]byte(`null`),
		)

	mock.ExpectQuery("SELECT b.id, b.customer_name").
		WithArgs("t-1").
		WillReturnRows(rows)

	repo := NewRepository(mock)
	got, err := repo.ListConfirmed(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b-1", got[0].ID)
	assert.Equal(t, "Ana Pérez", got[0].CustomerName)
	require.NotNil(t, got[0].Service)
	assert.Equal(t, int64(50000), got[0].Service.PriceCLP)
	assert.Equal(t, "deposit", got[0].Service.PaymentMode)
	require.NotNil(t, got[0].Service.DepositAmountCLP)
	assert.Equal(t, int64(20000), *got[0].Service.DepositAmountCLP)
	require.Len(t, got[0].Payments, 1)
	assert.Equal(t, "pending", got[0].Payments[0].Status)

	assert.Equal(t, "b-2", got[1].ID)
	assert.Empty(t, got[1].CustomerEmail)
	assert.Empty(t, got[1].Payments, "null payments normalize to empty")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListConfirmedMissingService(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	start := time.Date(2026, 1, 12, 15, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(bookingColumns()).
		AddRow(
			"b-3", strp("Carla Muñoz"), (*string)(nil), start, "confirmed",
			(*string)(nil), (*int64)(nil), (*string)(nil), (*int64)(nil), (*string)(nil),
			[]byte(`null`),
		)

	mock.ExpectQuery("SELECT b.id, b.customer_name").
		WithArgs("t-1").
		WillReturnRows(rows)

	repo := NewRepository(mock)
	got, err := repo.ListConfirmed(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Service, "missing service relation stays nil")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListConfirmedQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT b.id, b.customer_name").
		WithArgs("t-1").
		WillReturnError(assert.AnError)

	repo := NewRepository(mock)
	_, err = repo.ListConfirmed(context.Background(), "t-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
