package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMapAssignOnce(t *testing.T) {
	var m ColumnMap
	require.True(t, m.Assign(SyncLog, 4))
	assert.False(t, m.Assign(SyncLog, 9), "a field must never be reassigned")

	idx, ok := m.Index(SyncLog)
	require.True(t, ok)
	assert.Equal(t, 4, idx)
}

func TestColumnMapColumnClaimedOnce(t *testing.T) {
	var m ColumnMap
	require.True(t, m.Assign(SendDate, 7))
	assert.False(t, m.Assign(SendTime, 7))
	assert.False(t, m.Has(SendTime))
	assert.True(t, m.Claimed(7))
}

func TestColumnMapRejectsNegativeIndex(t *testing.T) {
	var m ColumnMap
	assert.False(t, m.Assign(SendDate, -1))
	assert.Equal(t, 0, m.Len())
}

func TestColumnMapMaxIndex(t *testing.T) {
	var m ColumnMap
	assert.Equal(t, -1, m.MaxIndex())

	m.Assign(SendDate, 7)
	m.Assign(SyncLog, 12)
	m.Assign(BranchLabel, 0)
	assert.Equal(t, 12, m.MaxIndex())
	assert.Equal(t, 3, m.Len())
}

func TestColumnMapString(t *testing.T) {
	var m ColumnMap
	assert.Equal(t, "<empty>", m.String())

	m.Assign(SyncLog, 12)
	m.Assign(SendDate, 7)
	assert.Equal(t, "SEND_DATE=7 SYNC_LOG=12", m.String())
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want Field
	}{
		{"SYNC_LOG", SyncLog},
		{"sync_log", SyncLog},
		{" send_date ", SendDate},
		{"SEND_TIME", SendTime},
		{"branch_label", BranchLabel},
	}
	for _, tt := range tests {
		got, err := ParseField(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseField("RECEIVE_DATE")
	assert.Error(t, err)
}

func TestRowRecordTimestampRequiresBoth(t *testing.T) {
	date, clock, empty := "19/10/2026", "08:15:30", ""

	_, _, ok := RowRecord{SendDate: &date}.Timestamp()
	assert.False(t, ok)

	_, _, ok = RowRecord{SendDate: &date, SendTime: &empty}.Timestamp()
	assert.False(t, ok)

	d, c, ok := RowRecord{SendDate: &date, SendTime: &clock}.Timestamp()
	require.True(t, ok)
	assert.Equal(t, date, d)
	assert.Equal(t, clock, c)
}
