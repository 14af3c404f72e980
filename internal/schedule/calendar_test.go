package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDateUTC(t *testing.T) {
	// 23:30 in Santiago (UTC-3) is already the next day in UTC.
	santiago := time.FixedZone("CLT", -3*60*60)
	local := time.Date(2026, 1, 12, 23, 30, 0, 0, santiago)
	assert.Equal(t, "2026-01-13", FormatDate(local))

	utc := time.Date(2026, 1, 12, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-12", FormatDate(utc))
}

func TestStartEndOfMonth(t *testing.T) {
	tests := []struct {
		name  string
		in    time.Time
		start string
		end   string
	}{
		{"mid january", time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), "2026-01-01", "2026-01-31"},
		{"leap february", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
		{"non-leap february", time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC), "2026-02-01", "2026-02-28"},
		{"30-day month", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "2026-04-01", "2026-04-30"},
		{"december", time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC), "2025-12-01", "2025-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.start, FormatDate(StartOfMonth(tt.in)))
			assert.Equal(t, tt.end, FormatDate(EndOfMonth(tt.in)))
		})
	}
}

func TestMonthBoundsContainDate(t *testing.T) {
	for _, d := range []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 15, 13, 45, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
	} {
		start, end := StartOfMonth(d), EndOfMonth(d)
		assert.False(t, d.Before(start), "start must not exceed %s", d)
		assert.False(t, end.Before(start), "end before start for %s", d)
		assert.Equal(t, d.Month(), start.Month())
		assert.Equal(t, d.Month(), end.Month())
		assert.Equal(t, d.Year(), end.Year())
	}
}

func TestAddMonthsNormalizesOverflow(t *testing.T) {
	dec := time.Date(2025, 12, 20, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-01", FormatDate(AddMonths(dec, 1)))
	assert.Equal(t, "2025-11-01", FormatDate(AddMonths(dec, -1)))

	jan := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-12-01", FormatDate(AddMonths(jan, -1)))
	assert.Equal(t, "2027-03-01", FormatDate(AddMonths(jan, 14)))
}

func TestAddMonthsRoundTrip(t *testing.T) {
	d := time.Date(2026, 3, 17, 9, 30, 0, 0, time.UTC)
	for _, n := range []int{-25, -12, -1, 0, 1, 7, 13, 40} {
		got := AddMonths(AddMonths(d, n), -n)
		assert.Equal(t, StartOfMonth(d), got, "round trip n=%d", n)
	}
}
