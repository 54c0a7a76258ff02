package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/connector"
	"github.com/crimson-sun/synccheck/internal/connector/httpclient"
	"github.com/crimson-sun/synccheck/internal/diagnostics"
	"github.com/crimson-sun/synccheck/internal/engine"
	"github.com/crimson-sun/synccheck/internal/model"
	"github.com/crimson-sun/synccheck/internal/output"
)

// UnexpectedPrefix marks failures outside the known error families.
const UnexpectedPrefix = "unexpected error: "

// Processor extracts the sync status from a dashboard snapshot.
type Processor interface {
	Process(raw string, diag *diagnostics.Collector) (model.SyncStatus, error)
}

// Decider applies the delay policy to an extracted status.
type Decider interface {
	Decide(status model.SyncStatus, maxDelay time.Duration) model.Verdict
}

// Pipeline connects a connector, the extraction engine, the health decider and
// an output into one check run.
type Pipeline struct {
	connector connector.Connector
	processor Processor
	decider   Decider
	output    output.Output
	diag      *diagnostics.Collector
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Pipeline from the given components. diag and logger may be nil.
func New(conn connector.Connector, proc Processor, dec Decider, out output.Output, diag *diagnostics.Collector, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		connector: conn,
		processor: proc,
		decider:   dec,
		output:    out,
		diag:      diag,
		logger:    logger,
		now:       time.Now,
	}
}

// Run performs one check: snapshot, extract, decide, write. Every failure on
// the way becomes a PROBLEM verdict, so the returned verdict is always usable.
// The error is non-nil only when the verdict could not be written.
func (p *Pipeline) Run(ctx context.Context, cfg connector.ConnectorConfig, maxDelay time.Duration) (model.Verdict, error) {
	start := p.now()
	verdict := p.check(ctx, cfg, maxDelay)

	p.diag.Note("verdict", string(verdict.Status))
	if verdict.Reason != "" {
		p.diag.Note("reason", verdict.Reason)
	}
	if err := p.diag.Flush(); err != nil {
		p.logger.Warn("diagnostics flush failed", zap.Error(err))
	}

	p.logger.Info("check finished",
		zap.String("status", string(verdict.Status)),
		zap.String("reason", verdict.Reason),
		zap.Duration("elapsed", p.now().Sub(start)),
		zap.String("run_id", p.diag.RunID()),
	)

	if err := p.output.Write(ctx, verdict); err != nil {
		return verdict, fmt.Errorf("pipeline output: %w", err)
	}
	return verdict, nil
}

func (p *Pipeline) check(ctx context.Context, cfg connector.ConnectorConfig, maxDelay time.Duration) model.Verdict {
	raw, err := p.connector.Snapshot(ctx, cfg, p.diag)
	if err != nil {
		return p.fail("snapshot", err)
	}
	status, err := p.processor.Process(raw, p.diag)
	if err != nil {
		return p.fail("process", err)
	}
	return p.decider.Decide(status, maxDelay)
}

func (p *Pipeline) fail(stage string, err error) model.Verdict {
	reason := Reason(err)
	p.logger.Error("check failed", zap.String("stage", stage), zap.Error(err))
	return model.Problem(reason, p.now())
}

// Reason renders err as a verdict reason. Known failures are reported as is;
// anything else carries UnexpectedPrefix.
func Reason(err error) string {
	var (
		authErr  *connector.AuthError
		fetchErr *connector.FetchError
		parseErr *engine.ParseError
		apiErr   *httpclient.APIError
	)
	switch {
	case errors.As(err, &authErr), errors.As(err, &fetchErr),
		errors.As(err, &parseErr), errors.As(err, &apiErr):
		return err.Error()
	case errors.Is(err, context.Canceled):
		return "check interrupted"
	case errors.Is(err, context.DeadlineExceeded):
		return "check timed out"
	default:
		return UnexpectedPrefix + err.Error()
	}
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}
