// Package booking drives the public token flows: look up a booking by
// its opaque URL token, then cancel it or move it to a new slot.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/agendasalud/clinic-platform/internal/gateway"
	"github.com/agendasalud/clinic-platform/internal/schedule"
)

// FlowState is the presentation state of a public flow.
type FlowState string

const (
	StateLoading      FlowState = "loading"
	StateReady        FlowState = "ready"
	StateSlotsLoading FlowState = "slots_loading"
	StateSlotsReady   FlowState = "slots_ready"
	StateConfirming   FlowState = "confirming"
	StateDone         FlowState = "done"
	StateErrored      FlowState = "errored"
)

var (
	// ErrNoSlotSelected guards Confirm: the only client-side precondition
	// in the reschedule flow.
	ErrNoSlotSelected = errors.New("booking: no slot selected")
	// ErrFlowCompleted is returned when driving a flow past Done.
	ErrFlowCompleted = errors.New("booking: flow already completed")
	// ErrNotReady is returned when confirming before the lookup resolved.
	ErrNotReady = errors.New("booking: flow not ready")
)

// ActionClient is the slice of the gateway client the flows need.
type ActionClient interface {
	Lookup(ctx context.Context, token string, action gateway.BookingAction) (*gateway.BookingLookup, error)
	Cancel(ctx context.Context, token string) error
	Reschedule(ctx context.Context, token string, newStartAt time.Time) error
	Availability(ctx context.Context, slug string, start, end time.Time) ([]schedule.TimeSlot, error)
}

// userMessage extracts the text shown inline to the end user.
func userMessage(err error) string {
	var nf *gateway.NotFoundError
	if errors.As(err, &nf) && nf.Message != "" {
		return nf.Message
	}
	var req *gateway.RequestError
	if errors.As(err, &req) && req.Message != "" {
		return req.Message
	}
	return err.Error()
}
