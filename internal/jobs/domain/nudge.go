package domain

import (
	"time"

	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	"github.com/diffrun/opsdesk/internal/timeutil"
)

// NudgeWindowDays is how far back, in local days, nudge candidates are looked up.
const NudgeWindowDays = 7

// NudgeExcludedDomain is the internal email domain that never receives nudges.
const NudgeExcludedDomain = "@lhmm.in"

// NudgePlan is what a nudge run should do for one candidate. Retry plans carry
// the attempt count observed on the failed history row.
type NudgePlan struct {
	Stage            int
	Retry            bool
	ObservedAttempts int
}

// SkipReason explains why a candidate gets no nudge.
type SkipReason string

// Skip reasons.
const (
	SkipPaid         SkipReason = "paid"
	SkipIncomplete   SkipReason = "workflows_incomplete"
	SkipNotDue       SkipReason = "not_due"
	SkipExhausted    SkipReason = "attempts_exhausted"
	SkipInFlight     SkipReason = "in_flight"
	SkipStageInvalid SkipReason = "stage_out_of_range"
)

// PlanNudge decides whether order is due for a nudge at now. Day counts are
// calendar days in loc between creation and now: day 1 sends stage 1, day 2
// sends stage 2, and a failed stage is retried on its own day until it has
// failed NudgeMaxAttempts times.
func PlanNudge(
	order *ordersDomain.Order,
	attempts []ordersDomain.NudgeAttempt,
	now time.Time,
	loc *time.Location,
) (NudgePlan, SkipReason, bool) {
	if order.Paid {
		return NudgePlan{}, SkipPaid, false
	}
	if order.NudgeStage < 0 || order.NudgeStage > 2 {
		return NudgePlan{}, SkipStageInvalid, false
	}
	if !order.AllWorkflowsCompleted(ordersDomain.NudgeRequiredWorkflows) {
		return NudgePlan{}, SkipIncomplete, false
	}

	days := timeutil.DaysBetween(order.CreatedAt, now, loc)
	stage := order.NudgeStage

	switch {
	case days == 1 && stage == 0:
		return planFresh(1, attempts)
	case days == 2 && stage == 1:
		return planFresh(2, attempts)
	case (days == 1 || days == 2) && stage == days:
		return planRetry(stage, attempts)
	default:
		return NudgePlan{}, SkipNotDue, false
	}
}

func planFresh(stage int, attempts []ordersDomain.NudgeAttempt) (NudgePlan, SkipReason, bool) {
	if a, ok := attemptFor(stage, attempts); ok && a.Exhausted() {
		return NudgePlan{}, SkipExhausted, false
	}
	return NudgePlan{Stage: stage}, "", true
}

func planRetry(stage int, attempts []ordersDomain.NudgeAttempt) (NudgePlan, SkipReason, bool) {
	a, ok := attemptFor(stage, attempts)
	if !ok {
		return NudgePlan{}, SkipNotDue, false
	}
	switch {
	case a.Exhausted():
		return NudgePlan{}, SkipExhausted, false
	case a.Status == ordersDomain.NudgeFailed:
		return NudgePlan{Stage: stage, Retry: true, ObservedAttempts: a.Attempts}, "", true
	case a.Status == ordersDomain.NudgeSending:
		return NudgePlan{}, SkipInFlight, false
	default:
		return NudgePlan{}, SkipNotDue, false
	}
}

func attemptFor(stage int, attempts []ordersDomain.NudgeAttempt) (ordersDomain.NudgeAttempt, bool) {
	for _, a := range attempts {
		if a.Stage == stage {
			return a, true
		}
	}
	return ordersDomain.NudgeAttempt{}, false
}

// FeedbackMaxDeliveryDays bounds the local days between processing and delivery
// for an order to qualify for the feedback email.
const FeedbackMaxDeliveryDays = 8

// FeedbackEligible reports whether a delivered order falls inside the feedback
// window: delivered 0 to FeedbackMaxDeliveryDays local days after processing.
func FeedbackEligible(order *ordersDomain.Order, loc *time.Location) bool {
	if order.Email == "" || order.ProcessedAt == nil || order.ShippingStatusAt == nil {
		return false
	}
	if !order.IsDelivered() {
		return false
	}
	days := timeutil.DaysBetween(*order.ProcessedAt, *order.ShippingStatusAt, loc)
	return days >= 0 && days <= FeedbackMaxDeliveryDays
}
