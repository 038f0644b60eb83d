// Package domain defines bulk fulfillment results and the mapping of orders
// onto printer and shipping partner requests.
package domain

import "strings"

// ItemStatus is the outcome of one item of a bulk operation.
type ItemStatus string

// Item outcomes.
const (
	ItemSuccess ItemStatus = "success"
	ItemError   ItemStatus = "error"
	ItemSkipped ItemStatus = "skipped"
)

// Steps name where a bulk item stopped.
const (
	StepDatabaseLookup = "database_lookup"
	StepLocked         = "locked"
	StepAlreadySent    = "already_sent"
	StepArtifacts      = "artifacts"
	StepCloudprinter   = "cloudprinter_api"
	StepProcessing     = "processing"
	StepCompleted      = "completed"
	StepAlreadyBooked  = "already_booked"
	StepCreateOrder    = "create_order"
	StepAssignAWB      = "assign_awb"
	StepPickup         = "generate_pickup"
	StepMoveArtifacts  = "move_artifacts"
	StepLogin          = "login"
)

// ItemResult is the outcome for one id of a bulk request.
type ItemResult struct {
	ID        string     `json:"id"`
	Status    ItemStatus `json:"status"`
	Step      string     `json:"step"`
	Message   string     `json:"message,omitempty"`
	Reference string     `json:"reference,omitempty"`
	AWB       string     `json:"awb,omitempty"`
}

// Summary counts the outcomes of a bulk request.
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Error   int `json:"error"`
	Skipped int `json:"skipped"`
}

// BulkResult is the response of every bulk operation. It is returned even
// when every item failed.
type BulkResult struct {
	Results []ItemResult `json:"results"`
	Summary Summary      `json:"summary"`
}

// Add appends r and updates the summary.
func (b *BulkResult) Add(r ItemResult) {
	b.Results = append(b.Results, r)
	b.Summary.Total++
	switch r.Status {
	case ItemSuccess:
		b.Summary.Success++
	case ItemError:
		b.Summary.Error++
	case ItemSkipped:
		b.Summary.Skipped++
	}
}

// UniqueIDs trims ids, drops blanks and keeps the first occurrence of each.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
