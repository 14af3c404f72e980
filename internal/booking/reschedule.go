package booking

import (
	"context"
	"time"

	"github.com/agendasalud/clinic-platform/internal/gateway"
	"github.com/agendasalud/clinic-platform/internal/schedule"
	"github.com/agendasalud/clinic-platform/pkg/logging"
)

// RescheduleFlow orchestrates: load booking by token, browse month
// availability, pick a day and slot, confirm. Errored is absorbing but
// not terminal; the caller retries by driving the flow again.
type RescheduleFlow struct {
	client ActionClient
	token  string
	logger *logging.Logger

	state        FlowState
	lookup       *gateway.BookingLookup
	slots        []schedule.TimeSlot
	selectedSlot *schedule.TimeSlot
	errMsg       string
}

// NewRescheduleFlow creates a flow for one public token.
func NewRescheduleFlow(client ActionClient, token string, logger *logging.Logger) *RescheduleFlow {
	if logger == nil {
		logger = logging.Default()
	}
	return &RescheduleFlow{
		client: client,
		token:  token,
		logger: logger,
		state:  StateLoading,
	}
}

// Start resolves the token. Success moves the flow to Ready.
func (f *RescheduleFlow) Start(ctx context.Context) error {
	lookup, err := f.client.Lookup(ctx, f.token, gateway.ActionReschedule)
	if err != nil {
		f.fail(err)
		return err
	}
	f.lookup = lookup
	f.state = StateReady
	f.errMsg = ""
	return nil
}

// LoadMonth fetches availability for the whole visible month and
// aggregates it into per-day counts for the calendar dots. Failures are
// swallowed: the calendar stays usable without indicators, and the flow
// state is untouched.
func (f *RescheduleFlow) LoadMonth(ctx context.Context, anyDay time.Time) schedule.DayIndex {
	if f.lookup == nil {
		return schedule.DayIndex{}
	}
	start := schedule.StartOfMonth(anyDay)
	end := schedule.EndOfMonth(anyDay)
	slots, err := f.client.Availability(ctx, f.lookup.Slug, start, end)
	if err != nil {
		f.logger.Warn("month availability failed, rendering without indicators",
			"slug", f.lookup.Slug, "month", schedule.FormatDate(start), "error", err)
		return schedule.DayIndex{}
	}
	return schedule.AggregateByDay(slots)
}

// SelectDate loads the slot list for a single day. An empty list is a
// valid SlotsReady outcome; any prior slot selection is discarded.
func (f *RescheduleFlow) SelectDate(ctx context.Context, date time.Time) ([]schedule.TimeSlot, error) {
	if f.state == StateDone {
		return nil, ErrFlowCompleted
	}
	if f.lookup == nil {
		return nil, ErrNotReady
	}
	f.state = StateSlotsLoading
	slots, err := f.client.Availability(ctx, f.lookup.Slug, date, date)
	if err != nil {
		f.fail(err)
		return nil, err
	}
	f.slots = slots
	f.selectedSlot = nil
	f.state = StateSlotsReady
	f.errMsg = ""
	return slots, nil
}

// SelectSlot records the chosen slot. No network call.
func (f *RescheduleFlow) SelectSlot(slot schedule.TimeSlot) error {
	if f.state == StateDone {
		return ErrFlowCompleted
	}
	if f.lookup == nil {
		return ErrNotReady
	}
	f.selectedSlot = &slot
	return nil
}

// Confirm submits the chosen slot. The flow reaches Done only on
// success; on failure the selection is retained so the user can retry.
func (f *RescheduleFlow) Confirm(ctx context.Context) error {
	if f.state == StateDone {
		return ErrFlowCompleted
	}
	if f.lookup == nil {
		return ErrNotReady
	}
	if f.selectedSlot == nil {
		return ErrNoSlotSelected
	}
	f.state = StateConfirming
	if err := f.client.Reschedule(ctx, f.token, f.selectedSlot.StartAt); err != nil {
		f.fail(err)
		return err
	}
	f.state = StateDone
	f.errMsg = ""
	return nil
}

// CanConfirm reports whether the confirm control is enabled.
func (f *RescheduleFlow) CanConfirm() bool {
	return f.state != StateDone && f.lookup != nil && f.selectedSlot != nil
}

// State returns the current presentation state.
func (f *RescheduleFlow) State() FlowState { return f.state }

// Booking returns the lookup projection once Ready.
func (f *RescheduleFlow) Booking() *gateway.BookingLookup { return f.lookup }

// Slots returns the slot list for the selected day.
func (f *RescheduleFlow) Slots() []schedule.TimeSlot { return f.slots }

// SelectedSlot returns the recorded selection, if any.
func (f *RescheduleFlow) SelectedSlot() *schedule.TimeSlot { return f.selectedSlot }

// ErrorMessage returns the inline message for the Errored state.
func (f *RescheduleFlow) ErrorMessage() string { return f.errMsg }

func (f *RescheduleFlow) fail(err error) {
	f.state = StateErrored
	f.errMsg = userMessage(err)
}
