package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFor(t *testing.T) {
	tests := []struct {
		name      string
		period    Period
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "weekly mid-week anchor",
			period:    Weekly,
			ref:       time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC), // Wednesday
			wantStart: date(2024, 3, 10),
			wantEnd:   time.Date(2024, 3, 16, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		},
		{
			name:      "weekly anchor on sunday",
			period:    Weekly,
			ref:       date(2024, 3, 10),
			wantStart: date(2024, 3, 10),
			wantEnd:   time.Date(2024, 3, 16, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		},
		{
			name:      "weekly anchor on saturday crosses month",
			period:    Weekly,
			ref:       time.Date(2024, 3, 2, 23, 0, 0, 0, time.UTC),
			wantStart: date(2024, 2, 25),
			wantEnd:   time.Date(2024, 3, 2, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		},
		{
			name:      "monthly leap february",
			period:    Monthly,
			ref:       date(2024, 2, 10),
			wantStart: date(2024, 2, 1),
			wantEnd:   time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		},
		{
			name:      "monthly december",
			period:    Monthly,
			ref:       date(2023, 12, 31),
			wantStart: date(2023, 12, 1),
			wantEnd:   time.Date(2023, 12, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		},
		{
			name:      "yearly",
			period:    Yearly,
			ref:       date(2024, 7, 4),
			wantStart: date(2024, 1, 1),
			wantEnd:   time.Date(2024, 12, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := For(tt.period, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantEnd, w.End)
			assert.True(t, w.Contains(tt.ref))
		})
	}
}

func TestFor_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// 2024-04-01 03:00 in UTC+8 is still 2024-03-31 in UTC.
	ref := time.Date(2024, 4, 1, 3, 0, 0, 0, loc)

	w, err := For(Monthly, ref)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 1), w.Start)
}

func TestFor_UnknownPeriod(t *testing.T) {
	_, err := For(Period("daily"), time.Now())
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestWindowContains_Bounds(t *testing.T) {
	w, err := For(Monthly, date(2024, 5, 15))
	require.NoError(t, err)

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(date(2024, 6, 1)))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 31, DaysInMonth(2024, time.December))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
}

func TestFixedClock(t *testing.T) {
	c := NewFixedClock(date(2024, 1, 1))
	assert.Equal(t, date(2024, 1, 1), c.Now())

	c.Advance(24 * time.Hour)
	assert.Equal(t, date(2024, 1, 2), c.Now())

	c.Set(date(2025, 6, 1))
	assert.Equal(t, date(2025, 6, 1), c.Now())
}
