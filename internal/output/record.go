package output

import (
	"time"

	"github.com/crimson-sun/synccheck/internal/model"
)

// Record is the JSON form of a verdict used by the history file and the webhook.
type Record struct {
	CheckedAt time.Time    `json:"checked_at"`
	Status    model.Status `json:"status"`
	Reason    string       `json:"reason,omitempty"`
	Line      string       `json:"line"`
	RunID     string       `json:"run_id,omitempty"`
}

// NewRecord builds the Record of v produced by run runID.
func NewRecord(v model.Verdict, runID string) Record {
	return Record{
		CheckedAt: v.CheckedAt,
		Status:    v.Status,
		Reason:    v.Reason,
		Line:      FormatLine(v),
		RunID:     runID,
	}
}
