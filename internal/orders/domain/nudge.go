package domain

import "time"

// NudgeAttemptStatus is the outcome of one nudge send.
type NudgeAttemptStatus string

// Nudge attempt outcomes.
const (
	NudgeSending NudgeAttemptStatus = "sending"
	NudgeSent    NudgeAttemptStatus = "sent"
	NudgeFailed  NudgeAttemptStatus = "failed"
)

// NudgeMaxAttempts is the number of failed sends after which a stage is abandoned.
const NudgeMaxAttempts = 5

// NudgeRequiredWorkflows is the number of preview workflow steps a job must complete
// before it is nudged.
const NudgeRequiredWorkflows = 13

// NudgeAttempt is the history record for one stage of the abandoned-checkout nudge.
// Attempts counts every send for the stage; Status and Error reflect the last one.
type NudgeAttempt struct {
	Stage    int
	Status   NudgeAttemptStatus
	Via      string
	Attempts int
	Error    string
	At       time.Time
}

// Exhausted reports whether the stage has failed too often to retry.
func (a NudgeAttempt) Exhausted() bool {
	return a.Status == NudgeFailed && a.Attempts >= NudgeMaxAttempts
}

// MaxErrorLength bounds error text persisted in histories and outbox rows.
const MaxErrorLength = 1000

// TruncateError clips msg to MaxErrorLength bytes on a rune boundary.
func TruncateError(msg string) string {
	if len(msg) <= MaxErrorLength {
		return msg
	}
	cut := MaxErrorLength
	for cut > 0 && !isRuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
