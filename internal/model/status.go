package model

// SignalSource tells which detection mode produced an ErrorSignal.
type SignalSource string

const (
	SourceLogColumn SignalSource = "log-column"
	SourceCellScan  SignalSource = "cell-scan"
)

// ErrorSignal is one branch-level error indication found in a dashboard row.
type ErrorSignal struct {
	Branch  string
	Message string
	Source  SignalSource
}

// RowRecord is the extraction result for a single data row.
type RowRecord struct {
	Index    int    // 1-based position among the data rows
	Branch   string // branch label, or "Row N" when the branch column is unknown
	SendDate *string
	SendTime *string
	Signals  []ErrorSignal
}

// Timestamp returns the row's send date and time when both are present and non-empty.
func (r RowRecord) Timestamp() (date, clock string, ok bool) {
	if r.SendDate == nil || r.SendTime == nil {
		return "", "", false
	}
	if *r.SendDate == "" || *r.SendTime == "" {
		return "", "", false
	}
	return *r.SendDate, *r.SendTime, true
}

// TimestampSource records where SyncStatus got its last-sync timestamp from.
type TimestampSource string

const (
	TimestampNone     TimestampSource = "none"
	TimestampRow      TimestampSource = "row"
	TimestampDocument TimestampSource = "document"
	TimestampClock    TimestampSource = "clock"
)

// SyncStatus is the aggregated synchronization state of one dashboard snapshot.
// An empty Problem means no branch reported an error.
type SyncStatus struct {
	LastSyncDate    *string
	LastSyncTime    *string
	Problem         string
	TimestampSource TimestampSource
}

// HasProblem reports whether any error signal was aggregated.
func (s SyncStatus) HasProblem() bool {
	return s.Problem != ""
}

// Timestamp returns the aggregated date and time when both are set.
func (s SyncStatus) Timestamp() (date, clock string, ok bool) {
	if s.LastSyncDate == nil || s.LastSyncTime == nil {
		return "", "", false
	}
	return *s.LastSyncDate, *s.LastSyncTime, true
}
