// Package domain defines the scheduled job results and the nudge eligibility rules.
package domain

// Job names, used for scheduling, logging and metrics.
const (
	JobNudges    = "nudges"
	JobFeedback  = "feedback_emails"
	JobReconcile = "reconcile"
)

// NudgeResult summarizes one nudge run.
type NudgeResult struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// FeedbackResult summarizes one feedback email run.
type FeedbackResult struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// ReconcileResult summarizes one shipment reconciliation run.
type ReconcileResult struct {
	Total     int `json:"total"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Errors    int `json:"errors"`
}

// FeedbackStatus is the outcome of a single feedback email request.
type FeedbackStatus string

// Feedback email outcomes.
const (
	FeedbackSent        FeedbackStatus = "sent"
	FeedbackAlreadySent FeedbackStatus = "already_sent"
)

// FeedbackSend is the outcome of sending the feedback email for one job.
type FeedbackSend struct {
	Status FeedbackStatus `json:"status"`
	Email  string         `json:"email"`
	JobID  string         `json:"job_id"`
}
