package booking

import (
	"context"

	"github.com/agendasalud/clinic-platform/internal/gateway"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// CancelFlow orchestrates: load booking by token, confirm cancellation.
// A failed confirm leaves the booking visible and the flow retryable.
type CancelFlow struct {
	client ActionClient
	token  string
	logger *logging.Logger

	state  FlowState
	lookup *gateway.BookingLookup
	errMsg string
}

// NewCancelFlow creates a flow for one public token.
func NewCancelFlow(client ActionClient, token string, logger *logging.Logger) *CancelFlow {
	if logger == nil {
		logger = logging.Default()
	}
	return &CancelFlow{
		client: client,
		token:  token,
		logger: logger,
		state:  StateLoading,
	}
}

// Start resolves the token.
func (f *CancelFlow) Start(ctx context.Context) error {
	lookup, err := f.client.Lookup(ctx, f.token, gateway.ActionCancel)
	if err != nil {
		f.state = StateErrored
		f.errMsg = userMessage(err)
		return err
	}
	f.lookup = lookup
	f.state = StateReady
	f.errMsg = ""
	return nil
}

// Confirm submits the cancellation. Whether a repeated call on a
// consumed token succeeds is the gateway's contract, not enforced here.
func (f *CancelFlow) Confirm(ctx context.Context) error {
	if f.state == StateDone {
		return ErrFlowCompleted
	}
	if f.lookup == nil {
		return ErrNotReady
	}
	if err := f.client.Cancel(ctx, f.token); err != nil {
		f.logger.Error("cancel failed", "error", err)
		f.state = StateErrored
		f.errMsg = userMessage(err)
		return err
	}
	f.state = StateDone
	f.errMsg = ""
	return nil
}

// CanConfirm reports whether the confirm control is still offered.
func (f *CancelFlow) CanConfirm() bool {
	return f.state != StateDone && f.lookup != nil
}

// State returns the current presentation state.
func (f *CancelFlow) State() FlowState { return f.state }

// Booking returns the lookup projection once Ready.
func (f *CancelFlow) Booking() *gateway.BookingLookup { return f.lookup }

// ErrorMessage returns the inline message for the Errored state.
func (f *CancelFlow) ErrorMessage() string { return f.errMsg }
