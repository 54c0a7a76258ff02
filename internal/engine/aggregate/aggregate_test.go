package aggregate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/synccheck/internal/model"
)

func strp(s string) *string { return &s }

func record(branch, date, clock string, messages ...string) model.RowRecord {
	rec := model.RowRecord{Branch: branch, SendDate: strp(date), SendTime: strp(clock)}
	for _, m := range messages {
		rec.Signals = append(rec.Signals, model.ErrorSignal{Branch: branch, Message: m, Source: model.SourceLogColumn})
	}
	return rec
}

func TestAggregateProblemMessage(t *testing.T) {
	records := []model.RowRecord{
		record("001", "", ""),
		record("002", "", "", "Erro de conexão"),
		record("003", "", "", "Timeout ao enviar"),
	}
	status := New(nil).Aggregate(records, "")
	assert.Equal(t, "[002]: Erro de conexão | [003]: Timeout ao enviar", status.Problem)
	assert.True(t, status.HasProblem())
}

func TestAggregateNoProblem(t *testing.T) {
	status := New(nil).Aggregate([]model.RowRecord{record("001", "19/10/2026", "08:15:30")}, "")
	assert.False(t, status.HasProblem())
	assert.Equal(t, "", status.Problem)
}

func TestAggregateCollapsesDuplicateRows(t *testing.T) {
	records := []model.RowRecord{
		record("002", "", "", "Erro de conexão"),
		record("002", "", "", "Erro de conexão"),
	}
	status := New(nil).Aggregate(records, "")
	assert.Equal(t, "[002]: Erro de conexão", status.Problem)

	records = append(records, record("003", "", "", "Erro de conexão"), record("002", "", "", "Timeout"))
	status = New(nil).Aggregate(records, "")
	assert.Equal(t, "[002]: Erro de conexão | [003]: Erro de conexão | [002]: Timeout", status.Problem)
}

func TestAggregateFirstTimestampWins(t *testing.T) {
	records := []model.RowRecord{
		record("001", "19/10/2026", ""),
		record("002", "19/10/2026", "08:14:55"),
		record("003", "19/10/2026", "08:15:30"),
	}
	status := New(nil).Aggregate(records, "")

	date, clock, ok := status.Timestamp()
	require.True(t, ok)
	assert.Equal(t, "19/10/2026", date)
	assert.Equal(t, "08:14:55", clock)
	assert.Equal(t, model.TimestampRow, status.TimestampSource)
}

func TestAggregateDocumentFallback(t *testing.T) {
	raw := `<p>Atualizado em 18/10/2026 às 23:59:58</p><p>19/10/2026 00:00:01</p>`
	status := New(nil).Aggregate([]model.RowRecord{{Branch: "Row 1"}}, raw)

	date, clock, ok := status.Timestamp()
	require.True(t, ok)
	assert.Equal(t, "18/10/2026", date)
	assert.Equal(t, "23:59:58", clock)
	assert.Equal(t, model.TimestampDocument, status.TimestampSource)
}

func TestAggregateMissingTimestamp(t *testing.T) {
	status := New(nil).Aggregate(nil, "<p>1/2/26 8:15</p>")
	_, _, ok := status.Timestamp()
	assert.False(t, ok)
	assert.Equal(t, model.TimestampNone, status.TimestampSource)
}

func TestAggregateClockFallback(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 15, 30, 0, time.UTC)
	status := New(nil, WithClockFallback(func() time.Time { return now })).Aggregate(nil, "")

	date, clock, ok := status.Timestamp()
	require.True(t, ok)
	assert.Equal(t, "19/10/2026", date)
	assert.Equal(t, "08:15:30", clock)
	assert.Equal(t, model.TimestampClock, status.TimestampSource)
}

func TestAggregateIdempotent(t *testing.T) {
	records := []model.RowRecord{
		record("001", "19/10/2026", "08:15:30"),
		record("002", "19/10/2026", "08:14:55", "Falha no envio"),
	}
	agg := New(nil)
	first := agg.Aggregate(records, "")
	for i := 0; i < 3; i++ {
		if diff := cmp.Diff(first, agg.Aggregate(records, "")); diff != "" {
			t.Fatalf("Aggregate() not idempotent (-first +again):\n%s", diff)
		}
	}
}
