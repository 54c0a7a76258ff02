// Package rows turns dashboard data rows into RowRecords.
package rows

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/engine/dedup"
	"github.com/crimson-sun/synccheck/internal/engine/dom"
	"github.com/crimson-sun/synccheck/internal/model"
)

// MessageSeparator joins the flagged cell texts of one row.
const MessageSeparator = " | "

// Evaluator extracts the branch, send timestamp and error signals of a row.
type Evaluator struct {
	detector *Detector
	logger   *zap.Logger
}

// New creates an Evaluator. A nil detector uses DefaultDetector and a nil
// logger disables logging.
func New(detector *Detector, logger *zap.Logger) *Evaluator {
	if detector == nil {
		detector = DefaultDetector()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{detector: detector, logger: logger}
}

// Evaluate reads row n (1-based among data rows) through cm. It reports false
// when the row is too short for the mapped columns; such rows are skipped.
func (e *Evaluator) Evaluate(n int, row *dom.Row, cm model.ColumnMap) (model.RowRecord, bool) {
	if len(row.Cells) <= cm.MaxIndex() {
		e.logger.Debug("skipping short row",
			zap.Int("row", n),
			zap.Int("cells", len(row.Cells)),
			zap.Int("max_index", cm.MaxIndex()),
		)
		return model.RowRecord{}, false
	}

	rec := model.RowRecord{Index: n, Branch: fmt.Sprintf("Row %d", n)}
	if text, ok := cellText(row, cm, model.BranchLabel); ok && text != "" {
		rec.Branch = text
	}
	if text, ok := cellText(row, cm, model.SendDate); ok {
		rec.SendDate = &text
	}
	if text, ok := cellText(row, cm, model.SendTime); ok {
		rec.SendTime = &text
	}

	if text, ok := cellText(row, cm, model.SyncLog); ok {
		if text != "" {
			rec.Signals = append(rec.Signals, model.ErrorSignal{
				Branch:  rec.Branch,
				Message: text,
				Source:  model.SourceLogColumn,
			})
		}
		return rec, true
	}

	if msg := e.scan(row); msg != "" {
		rec.Signals = append(rec.Signals, model.ErrorSignal{
			Branch:  rec.Branch,
			Message: msg,
			Source:  model.SourceCellScan,
		})
		e.logger.Debug("cell scan flagged row", zap.Int("row", n), zap.String("branch", rec.Branch))
	}
	return rec, true
}

// scan checks every cell of the row and joins the distinct flagged texts.
func (e *Evaluator) scan(row *dom.Row) string {
	var flagged []string
	for _, c := range row.Cells {
		if e.detector.Flag(c) {
			flagged = append(flagged, strings.TrimSpace(c.Text))
		}
	}
	return strings.Join(dedup.Strings(flagged), MessageSeparator)
}

func cellText(row *dom.Row, cm model.ColumnMap, f model.Field) (string, bool) {
	idx, ok := cm.Index(f)
	if !ok || idx >= len(row.Cells) {
		return "", false
	}
	return strings.TrimSpace(row.Cells[idx].Text), true
}
