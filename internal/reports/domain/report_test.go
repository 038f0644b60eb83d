package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffrun/opsdesk/internal/errors"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// 2025-03-10 12:45 IST
var now = time.Date(2025, 3, 10, 7, 15, 0, 0, time.UTC)

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, ist)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildPeriods(t *testing.T) {
	t.Run("Success_1d", func(t *testing.T) {
		p, err := BuildPeriods(Range1Day, now, ist)
		require.NoError(t, err)

		assert.Equal(t, GranularityHour, p.Granularity)
		assert.True(t, p.Current.End.Equal(at("2025-03-10 13:00")))
		assert.True(t, p.Current.Start.Equal(at("2025-03-09 13:00")))
		assert.True(t, p.Previous.Start.Equal(at("2025-03-02 13:00")))
		labels := Labels(p.Current, p.Granularity, ist)
		require.Len(t, labels, 24)
		assert.Equal(t, "2025-03-09 13:00", labels[0])
		assert.Equal(t, "2025-03-10 12:00", labels[23])
	})

	t.Run("Success_1w", func(t *testing.T) {
		p, err := BuildPeriods(Range1Week, now, ist)
		require.NoError(t, err)

		assert.True(t, p.Current.Start.Equal(at("2025-03-04 00:00")))
		assert.True(t, p.Current.End.Equal(at("2025-03-11 00:00")))
		assert.True(t, p.Previous.End.Equal(p.Current.Start))
		assert.Equal(t, []string{
			"2025-03-04", "2025-03-05", "2025-03-06", "2025-03-07", "2025-03-08", "2025-03-09", "2025-03-10",
		}, Labels(p.Current, p.Granularity, ist))
	})

	t.Run("Success_ThisMonth", func(t *testing.T) {
		p, err := BuildPeriods(RangeThisMonth, now, ist)
		require.NoError(t, err)

		assert.True(t, p.Current.Start.Equal(at("2025-03-01 00:00")))
		assert.True(t, p.Current.End.Equal(at("2025-03-11 00:00")))
		assert.True(t, p.Previous.Start.Equal(at("2025-02-01 00:00")))
		assert.Len(t, Labels(p.Previous, p.Granularity, ist), 28)
	})

	t.Run("Error_UnknownRange", func(t *testing.T) {
		_, err := BuildPeriods("2y", now, ist)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})
}

func TestCustomPeriods(t *testing.T) {
	t.Run("Success_MultiDay", func(t *testing.T) {
		p, err := CustomPeriods("2025-03-01", "2025-03-03", ist)
		require.NoError(t, err)

		assert.Equal(t, GranularityDay, p.Granularity)
		assert.True(t, p.Current.End.Equal(at("2025-03-04 00:00")))
		assert.True(t, p.Previous.Start.Equal(at("2025-02-26 00:00")))
	})

	t.Run("Success_SingleDayIsHourly", func(t *testing.T) {
		p, err := CustomPeriods("2025-03-05", "2025-03-05", ist)
		require.NoError(t, err)

		assert.Equal(t, GranularityHour, p.Granularity)
		assert.Len(t, Labels(p.Current, p.Granularity, ist), 24)
	})

	t.Run("Error_StartAfterEnd", func(t *testing.T) {
		_, err := CustomPeriods("2025-03-05", "2025-03-01", ist)
		assert.ErrorIs(t, err, ErrInvalidDates)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("Error_BadFormat", func(t *testing.T) {
		_, err := CustomPeriods("03/05/2025", "2025-03-06", ist)
		assert.ErrorIs(t, err, ErrInvalidDates)
	})
}

func TestBucket_UsesLocalCalendarDay(t *testing.T) {
	w := Window{Start: at("2025-03-01 00:00"), End: at("2025-03-03 00:00")}
	facts := []Fact{
		// 18:35 UTC is 00:05 IST the next day.
		{ProcessedAt: time.Date(2025, 3, 1, 18, 35, 0, 0, time.UTC), TotalPrice: 100},
		{ProcessedAt: time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC), TotalPrice: 50},
		{ProcessedAt: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), TotalPrice: 999},
	}

	counts := Bucket(facts, w, GranularityDay, ist, func(Fact) int { return 1 })
	revenue := Bucket(facts, w, GranularityDay, ist, func(f Fact) float64 { return f.TotalPrice })

	assert.Equal(t, []int{1, 1}, counts)
	assert.Equal(t, []float64{50, 100}, revenue)
}

func TestParseLocale(t *testing.T) {
	india := ParseLocale("in")
	assert.True(t, india.Matches(""))
	assert.True(t, india.Matches("IN"))
	assert.False(t, india.Matches("US"))

	assert.True(t, ParseLocale("ALL").Matches(""))

	strict := ParseLocale("IN_ONLY")
	assert.False(t, strict.Matches(""))
	assert.True(t, strict.Matches("in"))

	us := ParseLocale("US")
	assert.True(t, us.Matches("US"))
	assert.False(t, us.Matches(""))
}

func TestReportableOrderID(t *testing.T) {
	for _, id := range []string{"#1234", "1234", "#1234_2"} {
		assert.True(t, ReportableOrderID.MatchString(id), id)
	}
	for _, id := range []string{"#1234_RP1", "TEST-1", "#"} {
		assert.False(t, ReportableOrderID.MatchString(id), id)
	}
}

func TestShipStatus(t *testing.T) {
	w := Window{Start: at("2025-03-01 00:00"), End: at("2025-03-03 00:00")}
	facts := []Fact{
		{ProcessedAt: at("2025-03-01 10:00"), ShippingStatus: "Delivered"},
		{ProcessedAt: at("2025-03-01 11:00")},
		{ProcessedAt: at("2025-03-02 09:00"), ShippingStatus: "IN TRANSIT"},
		{ProcessedAt: at("2025-03-02 09:30")},
	}

	report := ShipStatus(facts, w, ist)

	assert.Equal(t, []string{"2025-03-01", "2025-03-02"}, report.Labels)
	assert.Equal(t, []int{2, 2}, report.Totals)
	assert.Equal(t, []int{1, 1}, report.Statuses[NoStatusLabel])
	assert.Equal(t, []int{1, 0}, report.Statuses["DELIVERED"])
	assert.Equal(t, []int{0, 1}, report.Statuses["IN TRANSIT"])
}

func TestSummarize(t *testing.T) {
	onTime := at("2025-03-08 23:00")
	late := at("2025-03-12 10:00")
	facts := []Fact{
		{ProcessedAt: at("2025-03-01 10:00"), ShippingStatus: "DELIVERED", DeliveredAt: &onTime},
		{ProcessedAt: at("2025-03-01 10:00"), ShippingStatus: "DELIVERED", DeliveredAt: &late},
		{ProcessedAt: at("2025-03-01 10:00"), ShippingStatus: "IN TRANSIT"},
		{ProcessedAt: at("2025-03-12 10:00"), ShippingStatus: "IN TRANSIT"},
	}

	s := Summarize(facts, at("2025-03-14 12:00"), ist)

	assert.Equal(t, SLASummary{DeliveredWithin: 1, Late: 2, Pending: 1, Total: 4}, s)
}

func TestProductionKPIs(t *testing.T) {
	kpis := ProductionKPIs([]Fact{
		{Printer: "Genesis", ShippingStatus: "PICKED UP"},
		{Printer: "Genesis"},
		{Printer: "Yara", ShippingStatus: "delivered"},
		{Printer: "Cloudprinter"},
	})

	assert.Equal(t, PrinterKPI{InProduction: 1, Shipped: 1, TotalSent: 2}, kpis["genesis"])
	assert.Equal(t, PrinterKPI{Shipped: 1, TotalSent: 1}, kpis["yara"])
	assert.NotContains(t, kpis, "cloudprinter")
}
