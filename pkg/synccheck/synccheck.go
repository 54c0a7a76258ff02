package synccheck

import (
	"errors"
	"fmt"
	"time"

	"github.com/crimson-sun/synccheck/internal/engine"
	"github.com/crimson-sun/synccheck/internal/engine/columns"
	"github.com/crimson-sun/synccheck/internal/engine/health"
	"github.com/crimson-sun/synccheck/internal/engine/vocab"
	"github.com/crimson-sun/synccheck/internal/model"
	"github.com/crimson-sun/synccheck/internal/output"
)

// ErrNoData reports a snapshot without any table to read.
var ErrNoData = errors.New("dashboard contains no synchronization data")

// Result is the outcome of one check.
type Result struct {
	OK        bool
	Reason    string
	CheckedAt time.Time
	// LastSync is the timestamp the delay was measured from, as shown in the
	// dashboard ("02/01/2006 15:04:05"). Empty when none was found.
	LastSync string
}

// Line renders the result as the monitoring status line.
func (r Result) Line() string {
	v := model.OK(r.CheckedAt)
	if !r.OK {
		v = model.Problem(r.Reason, r.CheckedAt)
	}
	return output.FormatLine(v)
}

// Checker evaluates dashboard snapshots.
type Checker struct {
	engine   *engine.Engine
	decider  *health.Engine
	maxDelay time.Duration
	now      func() time.Time
}

// New creates a Checker. It fails only when a rules file cannot be loaded or
// the max delay is not positive.
func New(opts ...Option) (*Checker, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxDelay <= 0 {
		return nil, fmt.Errorf("synccheck: max delay must be positive, got %v", o.maxDelay)
	}

	var s engine.Settings
	if o.rulesFile != "" {
		rules, err := vocab.LoadRules(o.rulesFile)
		if err != nil {
			return nil, fmt.Errorf("synccheck: %w", err)
		}
		s.Rules = rules
	}
	if p := o.positions; p != nil {
		s.Positions = columns.Positions{
			model.SendDate:    p[0],
			model.SendTime:    p[1],
			model.SyncLog:     p[2],
			model.BranchLabel: p[3],
		}
	}
	if o.assumeNow {
		s.ClockFallback = o.now
	}

	return &Checker{
		engine:   engine.NewDefault(s, o.logger),
		decider:  health.New(health.WithLocation(o.loc), health.WithClock(o.now)),
		maxDelay: o.maxDelay,
		now:      o.now,
	}, nil
}

// Check extracts and judges one snapshot. A snapshot without tables yields a
// failed Result together with an error wrapping ErrNoData.
func (c *Checker) Check(html string) (Result, error) {
	status, err := c.engine.Process(html, nil)
	if err != nil {
		res := Result{Reason: err.Error(), CheckedAt: c.now()}
		var perr *engine.ParseError
		if errors.As(err, &perr) {
			return res, fmt.Errorf("%w: %v", ErrNoData, err)
		}
		return res, err
	}

	v := c.decider.Decide(status, c.maxDelay)
	res := Result{OK: v.IsOK(), Reason: v.Reason, CheckedAt: v.CheckedAt}
	if date, clock, ok := status.Timestamp(); ok {
		res.LastSync = date + " " + clock
	}
	return res, nil
}
