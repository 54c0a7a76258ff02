package model

import "time"

// Status is the binary health outcome reported to the monitoring scheduler.
type Status string

const (
	StatusOK      Status = "OK"
	StatusProblem Status = "PROBLEM"
)

// Verdict is the terminal output of a check run.
type Verdict struct {
	Status    Status    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// OK returns a healthy verdict.
func OK(at time.Time) Verdict {
	return Verdict{Status: StatusOK, CheckedAt: at}
}

// Problem returns an unhealthy verdict carrying a human-readable reason.
func Problem(reason string, at time.Time) Verdict {
	return Verdict{Status: StatusProblem, Reason: reason, CheckedAt: at}
}

// IsOK reports whether the verdict is healthy.
func (v Verdict) IsOK() bool {
	return v.Status == StatusOK
}
