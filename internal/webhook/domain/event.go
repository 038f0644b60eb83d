// Package domain defines partner webhook payloads, their normalization into
// order updates, and the dedup keys that make redelivery a no-op.
package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Providers.
const (
	ProviderShiprocket   = "shiprocket"
	ProviderCloudprinter = "cloudprinter"
)

// Event is a processed webhook delivery, kept for dedup until purged.
type Event struct {
	DedupKey   string
	Provider   string
	OrderRef   string
	ReceivedAt time.Time
}

// Outcome describes what handling a webhook did.
type Outcome string

// Webhook outcomes.
const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeStale     Outcome = "stale"
	OutcomeIgnored   Outcome = "ignored"
)

// Result is returned by webhook handling. PickupClaimed is true only for the
// delivery that won the pickup notification claim.
type Result struct {
	Provider      string
	DedupKey      string
	Outcome       Outcome
	OrderID       string
	PickupClaimed bool
}

// dedupKey hashes the joined parts with SHA-256 and returns lowercase hex.
func dedupKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// FlexString accepts a JSON string, number or null. Partners send identifiers
// in either form.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the value.
func (f FlexString) String() string {
	return string(f)
}

// FlexBool accepts a JSON bool, 0/1 or "true"/"false".
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = FlexBool(v)
		return nil
	}
	v, _ := strconv.ParseBool(string(s))
	*b = FlexBool(v)
	return nil
}
