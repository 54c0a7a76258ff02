// Package health turns an aggregated SyncStatus into the final verdict.
package health

import (
	"fmt"
	"math"
	"time"

	"github.com/crimson-sun/synccheck/internal/model"
)

// TimestampLayout is the dashboard's date and time format joined by a space.
const TimestampLayout = "02/01/2006 15:04:05"

// MissingTimestamp is the reason reported when no timestamp could be found.
const MissingTimestamp = "no synchronization timestamp found in the dashboard"

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the zone the dashboard timestamps are expressed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine applies the delay policy.
type Engine struct {
	loc *time.Location
	now func() time.Time
}

// New creates an Engine that reads timestamps in local time unless told otherwise.
func New(opts ...Option) *Engine {
	e := &Engine{loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide returns PROBLEM when status carries an error, has no usable timestamp,
// or is older than maxDelay; OK otherwise. Error signals win over the delay
// check. A timestamp ahead of the clock counts as on time.
func (e *Engine) Decide(status model.SyncStatus, maxDelay time.Duration) model.Verdict {
	now := e.now()
	if status.HasProblem() {
		return model.Problem(status.Problem, now)
	}

	date, clock, ok := status.Timestamp()
	if !ok || date == "" || clock == "" {
		return model.Problem(MissingTimestamp, now)
	}

	stamp := date + " " + clock
	ts, err := time.ParseInLocation(TimestampLayout, stamp, e.loc)
	if err != nil {
		return model.Problem(fmt.Sprintf("malformed sync timestamp %q", stamp), now)
	}

	delay := now.Sub(ts)
	if delay > maxDelay {
		overflow := int64(math.Ceil((delay - maxDelay).Seconds()))
		return model.Problem(fmt.Sprintf("sync delayed %ds beyond the %ds limit (last sync %s)",
			overflow, int64(maxDelay.Seconds()), stamp), now)
	}
	return model.OK(now)
}
