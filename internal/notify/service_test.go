package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEmailSender struct {
	sent    []EmailMessage
	failOn  string // fail if To matches this
	callErr error
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if m.callErr != nil {
		return m.callErr
	}
	if m.failOn != "" && msg.To == m.failOn {
		return errors.New("mock email error")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func baseNotification() BookingNotification {
	return BookingNotification{
		Type:         TypeConfirmation,
		To:           "ana@example.cl",
		StartAt:      time.Date(2026, time.January, 12, 18, 0, 0, 0, time.UTC),
		CustomerName: "Ana Pérez",
		ServiceName:  "Evaluación",
		TenantName:   "Clínica Centro",
		Timezone:     "America/Santiago",
	}
}

func TestServiceSendsToRecipientAndAdmin(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, "admin@agendasalud.cl", nil)

	err := svc.Send(context.Background(), baseNotification())
	require.NoError(t, err)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "ana@example.cl", sender.sent[0].To)
	assert.Equal(t, "admin@agendasalud.cl", sender.sent[1].To)
	assert.Equal(t, "Tu reserva está confirmada", sender.sent[0].Subject)
	assert.Equal(t, sender.sent[0].HTML, sender.sent[1].HTML)
}

func TestServiceSkipsDuplicateAdminCopy(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, "ana@example.cl", nil)

	n := baseNotification()
	err := svc.Send(context.Background(), n)
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1)
}

func TestServiceWithoutAdminAddress(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, "", nil)

	err := svc.Send(context.Background(), baseNotification())
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1)
}

func TestServiceSendFailure(t *testing.T) {
	sender := &mockEmailSender{callErr: errors.New("smtp down")}
	svc := NewService(sender, "admin@agendasalud.cl", nil)

	err := svc.Send(context.Background(), baseNotification())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSendFailed)
}

func TestServicePartialFailureStillAttemptsAll(t *testing.T) {
	sender := &mockEmailSender{failOn: "ana@example.cl"}
	svc := NewService(sender, "admin@agendasalud.cl", nil)

	err := svc.Send(context.Background(), baseNotification())
	require.ErrorIs(t, err, ErrSendFailed)

	// The admin copy is still delivered even when the patient copy fails.
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "admin@agendasalud.cl", sender.sent[0].To)
}

func TestServiceValidation(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, "admin@agendasalud.cl", nil)

	cases := []struct {
		name   string
		mutate func(*BookingNotification)
	}{
		{"unknown type", func(n *BookingNotification) { n.Type = "reminder" }},
		{"missing recipient", func(n *BookingNotification) { n.To = "  " }},
		{"zero start", func(n *BookingNotification) { n.StartAt = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := baseNotification()
			tc.mutate(&n)
			err := svc.Send(context.Background(), n)
			require.ErrorIs(t, err, ErrInvalidNotification)
			assert.Empty(t, sender.sent)
		})
	}
}

func TestRenderConfirmationUsesTimezone(t *testing.T) {
	n := baseNotification()
	// 18:00 UTC on 2026-01-12 is 15:00 in Santiago (UTC-3 during DST).
	rendered, err := renderBookingEmail(n)
	require.NoError(t, err)

	assert.Contains(t, rendered.HTML, "12 de enero de 2026, 15:00 hrs")
	assert.Contains(t, rendered.HTML, "Reserva confirmada")
	assert.Contains(t, rendered.HTML, "Evaluaci")
	assert.Contains(t, rendered.Text, "Hola Ana Pérez")
}

func TestRenderFallsBackToDefaultTimezone(t *testing.T) {
	n := baseNotification()
	n.Timezone = "Mars/Olympus"
	rendered, err := renderBookingEmail(n)
	require.NoError(t, err)
	assert.Contains(t, rendered.HTML, "15:00 hrs")
}

func TestRenderCancelledAndRescheduled(t *testing.T) {
	n := baseNotification()

	n.Type = TypeCancelled
	cancelled, err := renderBookingEmail(n)
	require.NoError(t, err)
	assert.Equal(t, "Tu reserva fue cancelada", cancelled.Subject)
	assert.Contains(t, cancelled.HTML, "Reserva cancelada")

	n.Type = TypeRescheduled
	rescheduled, err := renderBookingEmail(n)
	require.NoError(t, err)
	assert.Equal(t, "Tu reserva fue reagendada", rescheduled.Subject)
	assert.Contains(t, rescheduled.HTML, "Reserva reagendada")
}

func TestRenderOmitsEmptyOptionalRows(t *testing.T) {
	n := baseNotification()
	n.ServiceName = ""
	n.TenantName = ""
	rendered, err := renderBookingEmail(n)
	require.NoError(t, err)
	assert.False(t, strings.Contains(rendered.HTML, "Servicio:"))
	assert.False(t, strings.Contains(rendered.HTML, "Centro:"))
	assert.Contains(t, rendered.HTML, "Equipo AgendaSalud")
}
