package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliveredAt(s string) *time.Time {
	t := at(s)
	return &t
}

func cohortFacts() []Fact {
	return []Fact{
		{OrderID: "#1", ProcessedAt: at("2025-03-01 10:00"), ShippingStatus: "DELIVERED", DeliveredAt: deliveredAt("2025-03-05 09:00")},
		{OrderID: "#2", ProcessedAt: at("2025-03-01 23:00"), ShippingStatus: "DELIVERED", DeliveredAt: deliveredAt("2025-03-11 08:00")},
		{OrderID: "#3", ProcessedAt: at("2025-03-01 12:00"), ShippingStatus: "IN TRANSIT"},
		// 19:30 UTC on March 1st is March 2nd locally.
		{OrderID: "#4", ProcessedAt: at("2025-03-02 01:00"), ShippingStatus: "DELIVERED", DeliveredAt: deliveredAt("2025-03-04 00:30")},
	}
}

func TestSLACohorts(t *testing.T) {
	cohorts := SLACohorts(cohortFacts(), ist)

	assert.Equal(t, []CohortDay{
		{ProcessedDate: "2025-03-01", DeliveredPct: 66.7, UndeliveredPct: 33.3, Total: 3},
		{ProcessedDate: "2025-03-02", DeliveredPct: 100, UndeliveredPct: 0, Total: 1},
	}, cohorts)
	assert.Empty(t, SLACohorts(nil, ist))
}

func TestCohortOrders(t *testing.T) {
	t.Run("Success_SLAAnswerPerOrder", func(t *testing.T) {
		orders := CohortOrders(cohortFacts(), "2025-03-01", ist)

		require.Len(t, orders, 3)
		assert.Equal(t, "#1", orders[0].OrderID)
		assert.Equal(t, AnswerYes, orders[0].DeliveredInSLA)
		require.NotNil(t, orders[0].DeliveredAt)

		assert.Equal(t, AnswerNo, orders[1].DeliveredInSLA)
		assert.NotNil(t, orders[1].DeliveredAt)

		assert.Equal(t, AnswerNo, orders[2].DeliveredInSLA)
		assert.Nil(t, orders[2].DeliveredAt)
		assert.Equal(t, "IN TRANSIT", orders[2].CurrentStatus)
	})

	t.Run("Success_UnknownDayIsEmpty", func(t *testing.T) {
		orders := CohortOrders(cohortFacts(), "2025-03-05", ist)

		assert.NotNil(t, orders)
		assert.Empty(t, orders)
	})
}

func TestDeliveryLatency(t *testing.T) {
	t.Run("Success_RowsAndTotal", func(t *testing.T) {
		rows := DeliveryLatency(cohortFacts(), ist)

		require.Len(t, rows, 3)
		assert.Equal(t, LatencyRow{
			ProcessedDate: "2025-03-01", TotalOrders: 3, DeliveredOrders: 2, Day4: 33.3, Day10Plus: 33.3,
		}, rows[0])
		assert.Equal(t, LatencyRow{
			ProcessedDate: "2025-03-02", TotalOrders: 1, DeliveredOrders: 1, DayLE3: 100,
		}, rows[1])
		assert.Equal(t, LatencyRow{
			ProcessedDate: LatencyTotalLabel, TotalOrders: 4, DeliveredOrders: 3, DayLE3: 25, Day4: 25, Day10Plus: 25,
		}, rows[2])
	})

	t.Run("Success_NoOrdersOnlyTotal", func(t *testing.T) {
		rows := DeliveryLatency(nil, ist)

		assert.Equal(t, []LatencyRow{{ProcessedDate: LatencyTotalLabel}}, rows)
	})

	t.Run("Success_EveryDayBucket", func(t *testing.T) {
		var facts []Fact
		for days := 3; days <= 10; days++ {
			processed := at("2025-03-01 10:00")
			d := processed.AddDate(0, 0, days)
			facts = append(facts, Fact{ProcessedAt: processed, ShippingStatus: "Delivered", DeliveredAt: &d})
		}

		row := DeliveryLatency(facts, ist)[0]

		for _, pct := range []float64{row.DayLE3, row.Day4, row.Day5, row.Day6, row.Day7, row.Day8, row.Day9, row.Day10Plus} {
			assert.Equal(t, 12.5, pct)
		}
	})
}

func TestNewProductionGraph(t *testing.T) {
	graph := NewProductionGraph([]Fact{
		{Printer: "Genesis", ShippingStatus: "DELIVERED"},
		{Printer: "Genesis"},
		{Printer: "Yara", ShippingStatus: "PICKED UP"},
	}, "2025-03-01", "2025-03-07")

	assert.Equal(t, map[string]int{"genesis": 1, "yara": 0}, graph.InProduction)
	assert.Equal(t, map[string]int{"genesis": 1, "yara": 1}, graph.Shipped)
	assert.Equal(t, "2025-03-07", graph.Range["end_date"])
}
