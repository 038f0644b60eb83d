package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func sha(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestShiprocketPayload_Unmarshal(t *testing.T) {
	raw := `{"awb": 19041424751540, "courier_name": "Delhivery", "current_status": "Picked Up",
		"current_status_id": 42, "order_id": "1234", "sr_order_id": 999, "is_return": 0,
		"current_timestamp": "23 05 2025 11:43:52",
		"scans": [{"date": "2025-05-23 11:43:52", "activity": "Pickup Done", "sr-status": "42"}]}`

	var p ShiprocketPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, FlexString("19041424751540"), p.AWB)
	assert.Equal(t, FlexString("42"), p.CurrentStatusID)
	assert.Equal(t, FlexString("999"), p.SROrderID)
	assert.False(t, bool(p.IsReturn))
	require.Len(t, p.Scans, 1)
	assert.Equal(t, "42", p.Scans[0].SRStatus)
}

func TestFlexBool(t *testing.T) {
	for in, want := range map[string]bool{`true`: true, `false`: false, `1`: true, `0`: false, `"true"`: true, `null`: false} {
		var b FlexBool
		require.NoError(t, json.Unmarshal([]byte(in), &b), in)
		assert.Equal(t, want, bool(b), in)
	}
}

func TestShiprocketPayload_DedupKey(t *testing.T) {
	p := ShiprocketPayload{AWB: "AWB1", CurrentStatusID: "7", CurrentTimestamp: " 23 05 2025 11:43:52 "}
	assert.Equal(t, sha("AWB1|7|23 05 2025 11:43:52"), p.DedupKey())

	other := p
	other.CurrentStatusID = "8"
	assert.NotEqual(t, p.DedupKey(), other.DedupKey())
}

func TestShiprocketPayload_ShipmentUpdate(t *testing.T) {
	now := time.Date(2025, 5, 23, 7, 0, 0, 0, time.UTC)

	t.Run("Success_PartnerLayoutInBusinessZone", func(t *testing.T) {
		p := ShiprocketPayload{AWB: "AWB1", CourierName: "Delhivery", CurrentStatus: "in transit",
			CurrentTimestamp: "23 05 2025 11:43:52"}

		u := p.ShipmentUpdate([]byte(`{"awb":"AWB1"}`), ist, now)

		require.NotNil(t, u.ShippingStatusAt)
		assert.Equal(t, time.Date(2025, 5, 23, 6, 13, 52, 0, time.UTC), *u.ShippingStatusAt)
		assert.Equal(t, "IN TRANSIT", u.ShippingStatus)
		assert.Equal(t, "AWB1", u.TrackingNumber)
		assert.Equal(t, "Delhivery", u.CourierPartner)
		assert.Empty(t, u.DeliveryStatus)
		assert.Nil(t, u.DeliveredAt)
		assert.JSONEq(t, `{"awb":"AWB1"}`, string(u.Data.Raw))
	})

	t.Run("Success_RFC3339AndSQLLayouts", func(t *testing.T) {
		u := ShiprocketPayload{CurrentTimestamp: "2025-05-23T11:43:52+05:30"}.ShipmentUpdate(nil, ist, now)
		require.NotNil(t, u.ShippingStatusAt)
		assert.Equal(t, time.Date(2025, 5, 23, 6, 13, 52, 0, time.UTC), *u.ShippingStatusAt)

		u = ShiprocketPayload{CurrentTimestamp: "2025-05-23 11:43:52"}.ShipmentUpdate(nil, ist, now)
		require.NotNil(t, u.ShippingStatusAt)
		assert.Equal(t, time.Date(2025, 5, 23, 6, 13, 52, 0, time.UTC), *u.ShippingStatusAt)
	})

	t.Run("Success_UnparseableTimestampKeptRaw", func(t *testing.T) {
		u := ShiprocketPayload{CurrentTimestamp: "yesterday"}.ShipmentUpdate(nil, ist, now)
		assert.Nil(t, u.ShippingStatusAt)
		assert.Nil(t, u.Data.CurrentTimestamp)
		assert.Equal(t, "yesterday", u.Data.CurrentTimestampRaw)
	})

	t.Run("Success_Delivered", func(t *testing.T) {
		u := ShiprocketPayload{CurrentStatus: "Delivered", CurrentTimestamp: "24 05 2025 10:00:00"}.ShipmentUpdate(nil, ist, now)
		assert.Equal(t, ordersDomain.DeliveryStatusShipped, u.DeliveryStatus)
		require.NotNil(t, u.DeliveredAt)
		assert.Equal(t, *u.ShippingStatusAt, *u.DeliveredAt)
	})

	t.Run("Success_RTODeliveredIsNotDelivery", func(t *testing.T) {
		u := ShiprocketPayload{CurrentStatus: "RTO Delivered"}.ShipmentUpdate(nil, ist, now)
		assert.Equal(t, ordersDomain.DeliveryStatusShipped, u.DeliveryStatus)
		assert.Nil(t, u.DeliveredAt)
	})
}

func TestCloudprinterPayload(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Success_StatusMap", func(t *testing.T) {
		cases := map[string]string{
			"ItemProduce":                ordersDomain.PrintStatusInProduction,
			"ItemPacked":                 ordersDomain.PrintStatusPacked,
			"ItemShipped":                ordersDomain.PrintStatusShipped,
			"ItemError":                  ordersDomain.PrintStatusError,
			"ItemCanceled":               ordersDomain.PrintStatusCancelled,
			"CloudprinterOrderValidated": ordersDomain.PrintStatusValidated,
		}
		for typ, want := range cases {
			status, ok := CloudprinterPayload{Type: typ}.PrintStatus()
			assert.True(t, ok, typ)
			assert.Equal(t, want, status, typ)
		}

		_, ok := CloudprinterPayload{Type: "ItemRefunded"}.PrintStatus()
		assert.False(t, ok)
	})

	t.Run("Success_DedupKey", func(t *testing.T) {
		p := CloudprinterPayload{OrderReference: "1234", Type: "ItemShipped", Datetime: "2025-05-23 10:00:00"}
		assert.Equal(t, sha("cloudprinter|1234|ItemShipped|2025-05-23 10:00:00"), p.DedupKey())
	})

	t.Run("Success_TrackingOnlyOnShipment", func(t *testing.T) {
		shipped := CloudprinterPayload{Type: "ItemShipped", Tracking: "TRK1", ShippingOption: "DHL"}.PrintUpdate(now)
		assert.Equal(t, "TRK1", shipped.TrackingNumber)
		assert.Equal(t, "DHL", shipped.CourierPartner)

		packed := CloudprinterPayload{Type: "ItemPacked", Tracking: "TRK1"}.PrintUpdate(now)
		assert.Empty(t, packed.TrackingNumber)
		assert.Equal(t, ordersDomain.PrintStatusPacked, packed.PrintStatus)
	})
}
