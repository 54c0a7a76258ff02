package engine

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/diagnostics"
	"github.com/crimson-sun/synccheck/internal/engine/aggregate"
	"github.com/crimson-sun/synccheck/internal/engine/columns"
	"github.com/crimson-sun/synccheck/internal/engine/dom"
	"github.com/crimson-sun/synccheck/internal/engine/rows"
	"github.com/crimson-sun/synccheck/internal/engine/tables"
	"github.com/crimson-sun/synccheck/internal/engine/vocab"
	"github.com/crimson-sun/synccheck/internal/model"
)

// NoDataSentinel prefixes every report of a dashboard without sync data.
const NoDataSentinel = "SEM_DADOS_SINCRONISMO"

// NoDataProblem is the Problem of a SyncStatus extracted from a dashboard that
// has tables but no data rows.
const NoDataProblem = NoDataSentinel + ": no synchronization data found in the dashboard"

// ParseError reports a snapshot from which no table structure could be
// extracted.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, tables.ErrNoTables) {
		return fmt.Sprintf("%s: no synchronization data (%v)", NoDataSentinel, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Engine orchestrates the resolve → map → evaluate → aggregate extraction.
type Engine struct {
	resolver   *tables.Resolver
	mapper     *columns.Mapper
	evaluator  *rows.Evaluator
	aggregator *aggregate.Aggregator
	logger     *zap.Logger
}

// New creates an Engine with the provided components.
func New(res *tables.Resolver, mp *columns.Mapper, ev *rows.Evaluator, agg *aggregate.Aggregator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		resolver:   res,
		mapper:     mp,
		evaluator:  ev,
		aggregator: agg,
		logger:     logger,
	}
}

// Settings tunes the components built by NewDefault. Zero values select the
// built-in vocabulary and the production column layout.
type Settings struct {
	Rules     []vocab.Rule
	Positions columns.Positions
	// ClockFallback, when set, stands in for a dashboard without any timestamp.
	ClockFallback func() time.Time
}

// NewDefault wires the standard resolver, mapper, evaluator and aggregator.
// Each component logs under its own name.
func NewDefault(s Settings, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := s.Rules
	if len(rules) == 0 {
		rules = vocab.DefaultRules()
	}
	positions := s.Positions
	if positions == nil {
		positions = columns.DefaultPositions()
	}
	var aggOpts []aggregate.Option
	if s.ClockFallback != nil {
		aggOpts = append(aggOpts, aggregate.WithClockFallback(s.ClockFallback))
	}
	return New(
		tables.New(vocab.HeaderKeywords(), logger.Named("tables")),
		columns.New(rules, positions, logger.Named("columns")),
		rows.New(rows.DefaultDetector(), logger.Named("rows")),
		aggregate.New(logger.Named("aggregate"), aggOpts...),
		logger,
	)
}

// Process extracts the synchronization status of one dashboard snapshot. Rows
// are evaluated in document order so the first timestamp found wins. diag may
// be nil.
func (e *Engine) Process(raw string, diag *diagnostics.Collector) (model.SyncStatus, error) {
	doc, err := dom.Parse(raw)
	if err != nil {
		return model.SyncStatus{}, &ParseError{Stage: "html", Err: err}
	}

	res, err := e.resolver.Resolve(doc)
	if err != nil {
		diag.Note("tables", 0)
		return model.SyncStatus{}, &ParseError{Stage: "tables", Err: err}
	}
	diag.Note("tables", len(doc.Tables))
	diag.Note("header_table", res.Header.Index)

	if !res.HasData() {
		e.logger.Info("dashboard has no data rows", zap.Int("tables", len(doc.Tables)))
		diag.Note("data_rows", 0)
		return model.SyncStatus{Problem: NoDataProblem, TimestampSource: model.TimestampNone}, nil
	}
	diag.Note("data_table", res.Data.Index)
	diag.Note("shared_table", res.Shared)

	var header []string
	if res.HeaderRow != nil {
		header = res.HeaderRow.Texts()
	}
	cm := e.mapper.Map(header)
	diag.Note("header", header)
	diag.Note("columns", cm.String())

	records := make([]model.RowRecord, 0, len(res.DataRows))
	skipped := 0
	for i, row := range res.DataRows {
		rec, ok := e.evaluator.Evaluate(i+1, row, cm)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	diag.Note("data_rows", len(res.DataRows))
	diag.Note("skipped_rows", skipped)

	status := e.aggregator.Aggregate(records, raw)
	diag.Note("timestamp_source", string(status.TimestampSource))
	diag.Note("problem", status.Problem)

	e.logger.Debug("extraction complete",
		zap.Int("rows", len(records)),
		zap.Int("skipped", skipped),
		zap.Stringer("columns", cm),
		zap.String("timestamp_source", string(status.TimestampSource)),
		zap.Bool("problem", status.HasProblem()),
	)
	return status, nil
}
