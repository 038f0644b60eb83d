package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func TestStartOfDay(t *testing.T) {
	// 18:35 UTC is 00:05 IST on the next calendar day.
	instant := time.Date(2025, 3, 9, 18, 35, 0, 0, time.UTC)

	got := StartOfDay(instant, ist)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, ist), got)
	assert.Equal(t, time.Date(2025, 3, 9, 18, 30, 0, 0, time.UTC), got.UTC())
}

func TestNextMidnight(t *testing.T) {
	instant := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, ist), NextMidnight(instant, ist))
}

func TestStartOfMonth(t *testing.T) {
	instant := time.Date(2025, 2, 28, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, ist), StartOfMonth(instant, ist))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{
			name: "same local day",
			a:    time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 3, 9, 18, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "crosses local midnight within minutes",
			a:    time.Date(2025, 3, 9, 18, 20, 0, 0, time.UTC),
			b:    time.Date(2025, 3, 9, 18, 40, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "two local days",
			a:    time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 3, 9, 1, 0, 0, 0, time.UTC),
			want: 2,
		},
		{
			name: "negative",
			a:    time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC),
			want: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b, ist))
		})
	}
}

func TestParseFirst(t *testing.T) {
	t.Run("Success_LocalLayout", func(t *testing.T) {
		got, ok := ParseFirst("09 03 2025 14:30:00", ist, "02 01 2006 15:04:05", time.RFC3339)
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC), got)
	})

	t.Run("Success_FallsThroughToRFC3339", func(t *testing.T) {
		got, ok := ParseFirst("2025-03-09T14:30:00Z", ist, "02 01 2006 15:04:05", time.RFC3339)
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, 3, 9, 14, 30, 0, 0, time.UTC), got)
	})

	t.Run("Error_Unparseable", func(t *testing.T) {
		_, ok := ParseFirst("yesterday", ist, "02 01 2006 15:04:05", time.RFC3339)
		assert.False(t, ok)
	})

	t.Run("Error_Blank", func(t *testing.T) {
		_, ok := ParseFirst("  ", ist, time.RFC3339)
		assert.False(t, ok)
	})
}
