package model

import (
	"fmt"
	"strings"
)

// Field is a semantic column of the sync dashboard.
type Field int

const (
	BranchLabel Field = iota
	SendDate
	SendTime
	SyncLog
)

var fieldNames = [...]string{
	BranchLabel: "BRANCH_LABEL",
	SendDate:    "SEND_DATE",
	SendTime:    "SEND_TIME",
	SyncLog:     "SYNC_LOG",
}

// Fields returns every field in declaration order.
func Fields() []Field {
	return []Field{BranchLabel, SendDate, SendTime, SyncLog}
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField converts a name such as "SYNC_LOG" (case-insensitive) to a Field.
func ParseField(s string) (Field, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range fieldNames {
		if name == want {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown column field %q", s)
}

// ColumnMap maps semantic fields to column indices. A field is assigned at most
// once and a column is claimed by at most one field. The zero value is empty.
type ColumnMap struct {
	fields map[Field]int
}

// Assign maps f to column idx. It reports false, leaving the map untouched, when f
// already has a column or idx is already claimed by another field.
func (m *ColumnMap) Assign(f Field, idx int) bool {
	if idx < 0 || m.Has(f) || m.Claimed(idx) {
		return false
	}
	if m.fields == nil {
		m.fields = make(map[Field]int, len(fieldNames))
	}
	m.fields[f] = idx
	return true
}

// Index returns the column of f and whether it is assigned.
func (m ColumnMap) Index(f Field) (int, bool) {
	idx, ok := m.fields[f]
	return idx, ok
}

// Has reports whether f is assigned.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m.fields[f]
	return ok
}

// Claimed reports whether any field already uses column idx.
func (m ColumnMap) Claimed(idx int) bool {
	for _, v := range m.fields {
		if v == idx {
			return true
		}
	}
	return false
}

// MaxIndex returns the highest assigned column, or -1 for an empty map.
func (m ColumnMap) MaxIndex() int {
	maxIdx := -1
	for _, v := range m.fields {
		if v > maxIdx {
			maxIdx = v
		}
	}
	return maxIdx
}

// Len returns the number of assigned fields.
func (m ColumnMap) Len() int {
	return len(m.fields)
}

// String renders the map in field order, e.g. "SEND_DATE=7 SEND_TIME=8".
func (m ColumnMap) String() string {
	var parts []string
	for _, f := range Fields() {
		if idx, ok := m.fields[f]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", f, idx))
		}
	}
	if len(parts) == 0 {
		return "<empty>"
	}
	return strings.Join(parts, " ")
}
