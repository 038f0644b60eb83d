package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func TestLatestScan(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		assert.Nil(t, LatestScan(nil, ist))
	})

	t.Run("picks latest parseable date across formats", func(t *testing.T) {
		scans := []Scan{
			{Date: "2025-03-09 10:00:00", Activity: "Manifested"},
			{Date: "09-03-2025 16:45:00", Activity: "Pickup Done"},
			{Date: "not a date", Activity: "In Transit"},
			{Date: "2025-03-09T12:00:00", Activity: "Out for pickup"},
		}

		got := LatestScan(scans, ist)
		require.NotNil(t, got)
		assert.Equal(t, "Pickup Done", got.Activity)
	})

	t.Run("falls back to last element when nothing parses", func(t *testing.T) {
		scans := []Scan{
			{Date: "", Activity: "Manifested"},
			{Date: "soon", Activity: "Picked Up"},
		}

		got := LatestScan(scans, ist)
		require.NotNil(t, got)
		assert.Equal(t, "Picked Up", got.Activity)
	})

	t.Run("later element wins a tie", func(t *testing.T) {
		scans := []Scan{
			{Date: "2025-03-09T12:00:00", Activity: "first"},
			{Date: "2025-03-09T12:00:00", Activity: "second"},
		}

		got := LatestScan(scans, ist)
		require.NotNil(t, got)
		assert.Equal(t, "second", got.Activity)
	})
}

func TestIsPickupActivity(t *testing.T) {
	assert.True(t, IsPickupActivity("Pickup Done"))
	assert.True(t, IsPickupActivity("  picked up "))
	assert.False(t, IsPickupActivity("Pickup Scheduled"))
	assert.False(t, IsPickupActivity(""))
}

func TestTrackingURL(t *testing.T) {
	assert.Equal(t, "https://shiprocket.co/tracking/AWB123", TrackingURL("AWB123"))
	assert.Equal(t, "https://shiprocket.co/tracking/A%2FB", TrackingURL("A/B"))
}
