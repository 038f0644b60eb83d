package domain

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/diffrun/opsdesk/internal/timeutil"
)

// ScanDateLayouts are the date formats seen in partner scan histories, tried in order.
var ScanDateLayouts = []string{
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"02-01-2006 15:04:05",
	"02 01 2006 15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Scan is one tracking event in a shipment's history.
type Scan struct {
	Date          string `json:"date"`
	Status        string `json:"status,omitempty"`
	Activity      string `json:"activity,omitempty"`
	Location      string `json:"location,omitempty"`
	SRStatus      string `json:"sr-status,omitempty"`
	SRStatusLabel string `json:"sr-status-label,omitempty"`
}

// ShipmentData is the shipping partner sub-record kept on the order, raw payload included.
type ShipmentData struct {
	AWB                 string          `json:"awb,omitempty"`
	Courier             string          `json:"courier_name,omitempty"`
	CurrentStatus       string          `json:"current_status,omitempty"`
	CurrentStatusID     string          `json:"current_status_id,omitempty"`
	ShipmentStatus      string          `json:"shipment_status,omitempty"`
	ShipmentStatusID    string          `json:"shipment_status_id,omitempty"`
	CurrentTimestampRaw string          `json:"current_timestamp_raw,omitempty"`
	CurrentTimestamp    *time.Time      `json:"current_timestamp_iso,omitempty"`
	ETD                 string          `json:"etd,omitempty"`
	IsReturn            bool            `json:"is_return,omitempty"`
	PODStatus           string          `json:"pod_status,omitempty"`
	LastUpdate          time.Time       `json:"last_update_utc"`
	Scans               []Scan          `json:"scans,omitempty"`
	Raw                 json.RawMessage `json:"raw,omitempty"`
}

// LatestScan picks the scan with the latest parseable date. When no date parses
// the last element wins. Returns nil for an empty history.
func LatestScan(scans []Scan, loc *time.Location) *Scan {
	if len(scans) == 0 {
		return nil
	}

	best := -1
	var bestAt time.Time
	for i := range scans {
		at, ok := timeutil.ParseFirst(scans[i].Date, loc, ScanDateLayouts...)
		if !ok {
			continue
		}
		if best == -1 || !at.Before(bestAt) {
			best = i
			bestAt = at
		}
	}

	if best == -1 {
		return &scans[len(scans)-1]
	}
	return &scans[best]
}

// IsPickupActivity reports whether a scan activity marks courier pickup.
func IsPickupActivity(activity string) bool {
	switch strings.ToLower(strings.TrimSpace(activity)) {
	case "pickup done", "picked up":
		return true
	default:
		return false
	}
}

// TrackingURL returns the public Shiprocket tracking page for an AWB.
func TrackingURL(awb string) string {
	return "https://shiprocket.co/tracking/" + url.PathEscape(awb)
}
