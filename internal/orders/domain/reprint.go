package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	// ReprintSuffixPattern matches the reprint suffix of an order identifier.
	ReprintSuffixPattern = regexp.MustCompile(`_RP(\d+)$`)

	reprintKeyPattern = regexp.MustCompile(`^RP(\d+)$`)
)

// ReprintMeta is the sub-record of one reprint of a base order.
type ReprintMeta struct {
	ReprintOrderID       string     `json:"reprint_order_id"`
	Remarks              string     `json:"remarks,omitempty"`
	RequestedBy          string     `json:"requested_by,omitempty"`
	RequestedAt          time.Time  `json:"requested_at"`
	ShiprocketOrderID    string     `json:"sr_order_id,omitempty"`
	ShiprocketShipmentID string     `json:"sr_shipment_id,omitempty"`
	TrackingNumber       string     `json:"tracking_number,omitempty"`
	CourierPartner       string     `json:"courier_partner,omitempty"`
	ShipmentCreatedAt    *time.Time `json:"shipment_created_at,omitempty"`
}

// ReprintKey formats the meta key for reprint n, e.g. "RP2".
func ReprintKey(n int) string {
	return "RP" + strconv.Itoa(n)
}

// SplitReprintID splits "1234_RP2" into ("1234", "RP2", true). Identifiers
// without a reprint suffix return (id, "", false).
func SplitReprintID(id string) (base, key string, ok bool) {
	loc := ReprintSuffixPattern.FindStringSubmatchIndex(id)
	if loc == nil {
		return id, "", false
	}
	return id[:loc[0]], "RP" + id[loc[2]:loc[3]], true
}

// NextReprint returns the identifier and meta key of the next reprint of base,
// one past the highest suffix already present in meta or current.
func NextReprint(base, current string, meta map[string]ReprintMeta) (id, key string) {
	highest := 0
	consider := func(n int) {
		if n > highest {
			highest = n
		}
	}

	for k := range meta {
		if m := reprintKeyPattern.FindStringSubmatch(k); m != nil {
			n, _ := strconv.Atoi(m[1])
			consider(n)
		}
	}
	if m := ReprintSuffixPattern.FindStringSubmatch(current); m != nil {
		n, _ := strconv.Atoi(m[1])
		consider(n)
	}

	next := highest + 1
	return fmt.Sprintf("%s_RP%d", base, next), ReprintKey(next)
}
