package schedule

import "time"

// TimeSlot is a discrete bookable interval as returned by the remote
// availability function.
type TimeSlot struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// DayIndex maps a YYYY-MM-DD key to the number of open slots that day.
type DayIndex map[string]int

// AggregateByDay counts slots per UTC calendar day. Duplicate or
// overlapping slots all count; the index backs a dot indicator, not an
// authoritative slot list. An empty input yields an empty, non-nil index
// so the calendar renders every day as "no availability".
func AggregateByDay(slots []TimeSlot) DayIndex {
	index := make(DayIndex, len(slots))
	for _, slot := range slots {
		index[FormatDate(slot.StartAt)]++
	}
	return index
}
