package domain

import (
	"encoding/json"
	"strings"
	"time"

	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	"github.com/diffrun/opsdesk/internal/timeutil"
)

// ShiprocketTimestampLayouts are tried in order for current_timestamp. Values
// without a zone are partner wall-clock time in the business timezone.
var ShiprocketTimestampLayouts = []string{
	"02 01 2006 15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ShiprocketPayload is a Shiprocket shipment status webhook.
type ShiprocketPayload struct {
	AWB              FlexString          `json:"awb"`
	CourierName      string              `json:"courier_name"`
	CurrentStatus    string              `json:"current_status"`
	CurrentStatusID  FlexString          `json:"current_status_id"`
	ShipmentStatus   string              `json:"shipment_status"`
	ShipmentStatusID FlexString          `json:"shipment_status_id"`
	CurrentTimestamp string              `json:"current_timestamp"`
	OrderID          FlexString          `json:"order_id"`
	SROrderID        FlexString          `json:"sr_order_id"`
	ETD              string              `json:"etd"`
	IsReturn         FlexBool            `json:"is_return"`
	PODStatus        string              `json:"pod_status"`
	Scans            []ordersDomain.Scan `json:"scans"`
}

// DedupKey identifies a status event: the same shipment, status and partner
// timestamp always hash to the same key.
func (p ShiprocketPayload) DedupKey() string {
	return dedupKey(p.AWB.String(), p.CurrentStatusID.String(), strings.TrimSpace(p.CurrentTimestamp))
}

// OrderRef is the order identifier used for logging and the dedup row.
func (p ShiprocketPayload) OrderRef() string {
	if p.OrderID != "" {
		return p.OrderID.String()
	}
	return p.AWB.String()
}

// ShipmentUpdate normalizes the payload. raw is stored verbatim on the order.
// An unparseable timestamp leaves ShippingStatusAt nil and DeliveredAt falls
// back to now.
func (p ShiprocketPayload) ShipmentUpdate(raw []byte, loc *time.Location, now time.Time) ordersDomain.ShipmentUpdate {
	status := strings.ToUpper(strings.TrimSpace(p.CurrentStatus))

	var parsed *time.Time
	if ts, ok := timeutil.ParseFirst(p.CurrentTimestamp, loc, ShiprocketTimestampLayouts...); ok {
		parsed = &ts
	}

	u := ordersDomain.ShipmentUpdate{
		Data: ordersDomain.ShipmentData{
			AWB:                 p.AWB.String(),
			Courier:             p.CourierName,
			CurrentStatus:       status,
			CurrentStatusID:     p.CurrentStatusID.String(),
			ShipmentStatus:      p.ShipmentStatus,
			ShipmentStatusID:    p.ShipmentStatusID.String(),
			CurrentTimestampRaw: p.CurrentTimestamp,
			CurrentTimestamp:    parsed,
			ETD:                 p.ETD,
			IsReturn:            bool(p.IsReturn),
			PODStatus:           p.PODStatus,
			LastUpdate:          now,
			Scans:               p.Scans,
		},
		TrackingNumber:   p.AWB.String(),
		CourierPartner:   p.CourierName,
		ShippingStatus:   status,
		ShippingStatusAt: parsed,
		At:               now,
	}
	if len(raw) > 0 && json.Valid(raw) {
		u.Data.Raw = json.RawMessage(raw)
	}

	if status == ordersDomain.ShippingStatusDelivered || status == ordersDomain.ShippingStatusRTODelivered {
		u.DeliveryStatus = ordersDomain.DeliveryStatusShipped
	}
	if status == ordersDomain.ShippingStatusDelivered {
		at := now
		if parsed != nil {
			at = *parsed
		}
		u.DeliveredAt = &at
	}
	return u
}
