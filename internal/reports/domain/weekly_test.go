package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffrun/opsdesk/internal/errors"
)

func weekNumbers(weeks []ISOWeek) [][2]int {
	out := make([][2]int, len(weeks))
	for i, w := range weeks {
		out[i] = [2]int{w.Year, w.Week}
	}
	return out
}

func TestWeeklyQuery_Resolve(t *testing.T) {
	t.Run("Success_RollingSkipsRecentWeeks", func(t *testing.T) {
		weeks, mode, err := WeeklyQuery{Weeks: 3, ExcludeWeeks: 2}.Resolve(now, ist)
		require.NoError(t, err)

		assert.Equal(t, WeeklyModeRolling, mode)
		assert.Equal(t, [][2]int{{2025, 7}, {2025, 8}, {2025, 9}}, weekNumbers(weeks))
		assert.True(t, weeks[2].Window.Start.Equal(at("2025-02-24 00:00")))
		assert.True(t, weeks[2].Window.End.Equal(at("2025-03-03 00:00")))
	})

	t.Run("Success_RollingCrossesYear", func(t *testing.T) {
		jan := time.Date(2025, 1, 8, 6, 0, 0, 0, time.UTC)

		weeks, _, err := WeeklyQuery{Weeks: 3, ExcludeWeeks: 1}.Resolve(jan, ist)
		require.NoError(t, err)

		assert.Equal(t, [][2]int{{2024, 51}, {2024, 52}, {2025, 1}}, weekNumbers(weeks))
		assert.True(t, weeks[2].Window.Start.Equal(at("2024-12-30 00:00")))
	})

	t.Run("Success_CustomDatesCoverTheirWeeks", func(t *testing.T) {
		weeks, mode, err := WeeklyQuery{StartDate: "2025-02-05", EndDate: "2025-02-18"}.Resolve(now, ist)
		require.NoError(t, err)

		assert.Equal(t, WeeklyModeCustom, mode)
		assert.Equal(t, [][2]int{{2025, 6}, {2025, 7}, {2025, 8}}, weekNumbers(weeks))
	})

	t.Run("Error_WeeksOutOfRange", func(t *testing.T) {
		_, _, err := WeeklyQuery{Weeks: 0, ExcludeWeeks: 2}.Resolve(now, ist)
		assert.ErrorIs(t, err, ErrInvalidWeeks)

		_, _, err = WeeklyQuery{Weeks: 6, ExcludeWeeks: MaxExcludeWeeks + 1}.Resolve(now, ist)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("Error_CustomDatesReversed", func(t *testing.T) {
		_, _, err := WeeklyQuery{StartDate: "2025-02-18", EndDate: "2025-02-05"}.Resolve(now, ist)
		assert.ErrorIs(t, err, ErrInvalidDates)
	})
}

func TestWeeklySLA(t *testing.T) {
	weeks, _, err := WeeklyQuery{Weeks: 1, ExcludeWeeks: 2}.Resolve(now, ist)
	require.NoError(t, err)

	facts := []Fact{
		{ProcessedAt: at("2025-02-24 10:00"), ShippingStatus: "DELIVERED", DeliveredAt: deliveredAt("2025-02-26 10:00")},
		{ProcessedAt: at("2025-02-25 10:00"), ShippingStatus: "DELIVERED", DeliveredAt: deliveredAt("2025-03-02 10:00")},
		{ProcessedAt: at("2025-02-26 10:00"), ShippingStatus: "DELIVERED", DeliveredAt: deliveredAt("2025-03-09 10:00")},
		{ProcessedAt: at("2025-03-02 22:00"), ShippingStatus: "IN TRANSIT"},
		{ProcessedAt: at("2025-03-03 01:00"), ShippingStatus: "DELIVERED", DeliveredAt: deliveredAt("2025-03-04 10:00")},
	}

	timeline, rows := WeeklySLA(facts, weeks, ist)

	assert.Equal(t, []int{9}, timeline)
	require.Len(t, rows, 1)
	assert.Equal(t, WeekSLA{
		Week:           9,
		Year:           2025,
		FromDate:       "2025-02-24",
		ToDate:         "2025-03-02",
		TotalOrders:    4,
		TotalDelivered: 3,
		DeliveredPct:   75,
		AvgDays:        6,
		SLACounts:      SLACounts[int]{LE3: 1, D48: 1, GE9: 1},
		SLAPct:         SLACounts[float64]{LE3: 33.33, D48: 33.33, GE9: 33.33},
	}, rows[0])
}
