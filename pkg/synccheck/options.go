package synccheck

import (
	"time"

	"go.uber.org/zap"
)

type options struct {
	maxDelay  time.Duration
	positions *[4]int
	rulesFile string
	loc       *time.Location
	now       func() time.Time
	assumeNow bool
	logger    *zap.Logger
}

// Option configures a Checker.
type Option func(*options)

// WithMaxDelay sets how old the last sync may be before the check fails.
// Default: 5 minutes.
func WithMaxDelay(d time.Duration) Option {
	return func(o *options) {
		o.maxDelay = d
	}
}

// WithPositions sets the column indices used when no header names the date,
// time, log or branch column. A negative index disables that fallback.
// Default: 7, 8, 12, 0.
func WithPositions(date, clock, log, branch int) Option {
	return func(o *options) {
		o.positions = &[4]int{date, clock, log, branch}
	}
}

// WithRulesFile loads the header matching rules from a YAML file instead of
// the built-in set.
func WithRulesFile(path string) Option {
	return func(o *options) {
		o.rulesFile = path
	}
}

// WithLocation sets the time zone of the dashboard timestamps. Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.loc = loc
	}
}

// WithClock replaces time.Now for the delay computation.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithAssumeNow treats a dashboard without any timestamp as synchronized at
// the current time instead of failing the check.
func WithAssumeNow() Option {
	return func(o *options) {
		o.assumeNow = true
	}
}

// WithLogger routes extraction debug logs to logger. Default: no logging.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func defaultOptions() options {
	return options{
		maxDelay: 5 * time.Minute,
		loc:      time.Local,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
}
