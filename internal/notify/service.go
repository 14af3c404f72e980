package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// NotificationType identifies which booking email to send.
type NotificationType string

const (
	TypeConfirmation NotificationType = "confirmation"
	TypeCancelled    NotificationType = "cancelled"
	TypeRescheduled  NotificationType = "rescheduled"
)

// ErrSendFailed marks a notification whose email dispatch failed after the
// payload itself was valid.
var ErrSendFailed = errors.New("notify: send failed")

// ErrInvalidNotification marks a payload that cannot be sent at all.
var ErrInvalidNotification = errors.New("notify: invalid notification")

// BookingNotification is the payload accepted by the notification endpoint.
type BookingNotification struct {
	Type         NotificationType `json:"type"`
	To           string           `json:"to"`
	StartAt      time.Time        `json:"start_at"`
	CustomerName string           `json:"customer_name,omitempty"`
	ServiceName  string           `json:"service_name,omitempty"`
	TenantName   string           `json:"tenant_name,omitempty"`
	Timezone     string           `json:"timezone,omitempty"`
}

// Validate checks the required fields before any email is rendered.
func (n BookingNotification) Validate() error {
	switch n.Type {
	case TypeConfirmation, TypeCancelled, TypeRescheduled:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidNotification, n.Type)
	}
	if strings.TrimSpace(n.To) == "" {
		return fmt.Errorf("%w: recipient required", ErrInvalidNotification)
	}
	if n.StartAt.IsZero() {
		return fmt.Errorf("%w: start_at required", ErrInvalidNotification)
	}
	return nil
}

// Service renders booking emails and delivers them to the patient plus a
// fixed administrative copy.
type Service struct {
	email      EmailSender
	adminEmail string
	logger     *logging.Logger
}

// NewService creates a notification service. adminEmail may be empty, in
// which case only the patient copy is sent.
func NewService(email EmailSender, adminEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:      email,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Send validates, renders and dispatches one booking notification. Every
// configured recipient is attempted even when an earlier one fails.
func (s *Service) Send(ctx context.Context, n BookingNotification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if s.email == nil {
		return fmt.Errorf("%w: email sender not configured", ErrSendFailed)
	}

	rendered, err := renderBookingEmail(n)
	if err != nil {
		return err
	}

	recipients := []string{n.To}
	if s.adminEmail != "" && !strings.EqualFold(s.adminEmail, n.To) {
		recipients = append(recipients, s.adminEmail)
	}

	var failed int
	for _, to := range recipients {
		msg := EmailMessage{
			To:      to,
			Subject: rendered.Subject,
			Body:    rendered.Text,
			HTML:    rendered.HTML,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: failed to send email", "error", err, "to", to, "type", string(n.Type))
			failed++
			continue
		}
		s.logger.Info("notify: booking email sent", "to", to, "type", string(n.Type))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d emails not delivered", ErrSendFailed, failed, len(recipients))
	}
	return nil
}
