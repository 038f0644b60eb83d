package domain

import (
	"strings"
	"time"

	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
)

// Cloudprinter event types.
const (
	CloudprinterItemProduce    = "ItemProduce"
	CloudprinterItemPacked     = "ItemPacked"
	CloudprinterItemShipped    = "ItemShipped"
	CloudprinterItemError      = "ItemError"
	CloudprinterItemCanceled   = "ItemCanceled"
	CloudprinterOrderValidated = "CloudprinterOrderValidated"
)

var cloudprinterPrintStatus = map[string]string{
	CloudprinterItemProduce:    ordersDomain.PrintStatusInProduction,
	CloudprinterItemPacked:     ordersDomain.PrintStatusPacked,
	CloudprinterItemShipped:    ordersDomain.PrintStatusShipped,
	CloudprinterItemError:      ordersDomain.PrintStatusError,
	CloudprinterItemCanceled:   ordersDomain.PrintStatusCancelled,
	CloudprinterOrderValidated: ordersDomain.PrintStatusValidated,
}

// CloudprinterPayload is a Cloudprinter CloudSignal webhook.
type CloudprinterPayload struct {
	APIKey         string     `json:"apikey"`
	Type           string     `json:"type"`
	Order          FlexString `json:"order"`
	OrderReference FlexString `json:"order_reference"`
	ItemReference  FlexString `json:"item_reference"`
	Tracking       string     `json:"tracking"`
	ShippingOption string     `json:"shipping_option"`
	Datetime       string     `json:"datetime"`
}

// PrintStatus maps the event type to an order print status.
func (p CloudprinterPayload) PrintStatus() (string, bool) {
	status, ok := cloudprinterPrintStatus[strings.TrimSpace(p.Type)]
	return status, ok
}

// IsShipped reports whether the event marks the item shipped.
func (p CloudprinterPayload) IsShipped() bool {
	return strings.TrimSpace(p.Type) == CloudprinterItemShipped
}

// DedupKey identifies the event by order, type and partner timestamp.
func (p CloudprinterPayload) DedupKey() string {
	return dedupKey(ProviderCloudprinter, p.OrderReference.String(), strings.TrimSpace(p.Type), strings.TrimSpace(p.Datetime))
}

// PrintUpdate normalizes the payload. Tracking fields are only carried on shipment.
func (p CloudprinterPayload) PrintUpdate(now time.Time) ordersDomain.PrintUpdate {
	status, _ := p.PrintStatus()
	u := ordersDomain.PrintUpdate{PrintStatus: status, At: now}
	if p.IsShipped() {
		u.TrackingNumber = strings.TrimSpace(p.Tracking)
		u.CourierPartner = strings.TrimSpace(p.ShippingOption)
	}
	return u
}
