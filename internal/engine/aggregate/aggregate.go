// Package aggregate merges per-row results into one SyncStatus.
package aggregate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/engine/dedup"
	"github.com/crimson-sun/synccheck/internal/model"
)

// Separator joins branch-labelled problems in SyncStatus.Problem.
const Separator = " | "

const (
	dateLayout = "02/01/2006"
	timeLayout = "15:04:05"
)

var (
	datePattern = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)
	timePattern = regexp.MustCompile(`\b\d{2}:\d{2}:\d{2}\b`)
)

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClockFallback makes Aggregate substitute now() when neither the rows nor
// the document carry a timestamp. Off by default: without it a missing
// timestamp stays missing and the decision stage reports it.
func WithClockFallback(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// Aggregator folds RowRecords into a SyncStatus.
type Aggregator struct {
	now    func() time.Time
	logger *zap.Logger
}

// New creates an Aggregator. A nil logger disables logging.
func New(logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate builds the status of one snapshot. raw is the document the records
// were extracted from and is only searched when no row supplied a timestamp.
// The result depends only on its inputs and the configured clock.
func (a *Aggregator) Aggregate(records []model.RowRecord, raw string) model.SyncStatus {
	status := model.SyncStatus{
		Problem:         problem(records),
		TimestampSource: model.TimestampNone,
	}

	for _, rec := range records {
		if date, clock, ok := rec.Timestamp(); ok {
			status.LastSyncDate, status.LastSyncTime = &date, &clock
			status.TimestampSource = model.TimestampRow
			return status
		}
	}

	date, clock := datePattern.FindString(raw), timePattern.FindString(raw)
	if date != "" && clock != "" {
		status.LastSyncDate, status.LastSyncTime = &date, &clock
		status.TimestampSource = model.TimestampDocument
		a.logger.Debug("timestamp taken from document text", zap.String("date", date), zap.String("time", clock))
		return status
	}

	if a.now != nil {
		now := a.now()
		date, clock := now.Format(dateLayout), now.Format(timeLayout)
		status.LastSyncDate, status.LastSyncTime = &date, &clock
		status.TimestampSource = model.TimestampClock
		a.logger.Warn("no timestamp in dashboard, assuming current time", zap.String("date", date), zap.String("time", clock))
	}
	return status
}

func problem(records []model.RowRecord) string {
	var signals []model.ErrorSignal
	for _, rec := range records {
		signals = append(signals, rec.Signals...)
	}
	signals = dedup.Signals(signals)

	parts := make([]string, 0, len(signals))
	for _, s := range signals {
		if s.Message == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s]: %s", s.Branch, s.Message))
	}
	return strings.Join(parts, Separator)
}
