// Package tables locates the header-bearing and data-bearing tables of a sync
// dashboard whose markup carries no reliable ids or labels.
package tables

import (
	"errors"

	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/engine/dom"
	"github.com/crimson-sun/synccheck/internal/engine/vocab"
)

// ErrNoTables is returned when the document has no table elements at all.
var ErrNoTables = errors.New("dashboard contains no table elements")

// Resolution is the outcome of a resolve pass. Data is nil when no table could
// supply data rows.
type Resolution struct {
	Header    *dom.Table
	HeaderRow *dom.Row
	Data      *dom.Table
	DataRows  []*dom.Row
	Shared    bool // header and data rows live in the same table
}

// HasData reports whether the resolution produced at least one data row.
func (r Resolution) HasData() bool {
	return r.Data != nil && len(r.DataRows) > 0
}

// Resolver picks tables by matching first rows against a header keyword set.
type Resolver struct {
	keywords []string
	logger   *zap.Logger
}

// New creates a Resolver. Keywords are folded before use; a nil logger
// disables logging.
func New(keywords []string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	folded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if f := vocab.Fold(kw); f != "" {
			folded = append(folded, f)
		}
	}
	return &Resolver{keywords: folded, logger: logger}
}

// LooksLikeHeader reports whether any cell of row contains a header keyword.
func (r *Resolver) LooksLikeHeader(row *dom.Row) bool {
	if row == nil {
		return false
	}
	for _, c := range row.Cells {
		if vocab.ContainsAny(vocab.Fold(c.Text), r.keywords) {
			return true
		}
	}
	return false
}

// Resolve selects the header table and the data table of doc.
func (r *Resolver) Resolve(doc *dom.Document) (Resolution, error) {
	if doc == nil || len(doc.Tables) == 0 {
		return Resolution{}, ErrNoTables
	}

	header := r.headerTable(doc.Tables)
	res := Resolution{Header: header, HeaderRow: header.FirstRow()}

	data, shared := r.dataTable(doc.Tables, header)
	if data == nil {
		r.logger.Debug("no data table found",
			zap.Int("tables", len(doc.Tables)),
			zap.Int("header_table", header.Index),
		)
		return res, nil
	}
	res.Data = data
	res.Shared = shared
	res.DataRows = r.dataRows(data, res.HeaderRow, shared)

	r.logger.Debug("tables resolved",
		zap.Int("tables", len(doc.Tables)),
		zap.Int("header_table", header.Index),
		zap.Int("data_table", data.Index),
		zap.Bool("shared", shared),
		zap.Int("data_rows", len(res.DataRows)),
	)
	return res, nil
}

func (r *Resolver) headerTable(all []*dom.Table) *dom.Table {
	for _, t := range all {
		if r.LooksLikeHeader(t.FirstRow()) {
			return t
		}
	}
	for _, t := range all {
		if len(t.Rows) > 1 {
			return t
		}
	}
	return all[0]
}

// dataTable walks the fallback ladder: a non-header multi-row table, any other
// multi-row table, the header table's own remaining rows, then a non-header
// single-row table.
func (r *Resolver) dataTable(all []*dom.Table, header *dom.Table) (*dom.Table, bool) {
	if t := r.firstOther(all, header, func(t *dom.Table) bool {
		return len(t.Rows) > 1 && !r.LooksLikeHeader(t.FirstRow())
	}); t != nil {
		return t, false
	}
	if t := r.firstOther(all, header, func(t *dom.Table) bool { return len(t.Rows) > 1 }); t != nil {
		return t, false
	}
	if len(header.Rows) > 1 {
		return header, true
	}
	if t := r.firstOther(all, header, func(t *dom.Table) bool {
		return len(t.Rows) == 1 && !r.repeatsHeader(t.FirstRow(), header.FirstRow())
	}); t != nil {
		return t, false
	}
	return nil, false
}

func (r *Resolver) firstOther(all []*dom.Table, header *dom.Table, accept func(*dom.Table) bool) *dom.Table {
	for _, t := range all {
		if t != header && accept(t) {
			return t
		}
	}
	return nil
}

func (r *Resolver) dataRows(t *dom.Table, headerRow *dom.Row, shared bool) []*dom.Row {
	rows := t.Rows
	if len(rows) > 0 && (shared || r.repeatsHeader(rows[0], headerRow)) {
		rows = rows[1:]
	}
	out := make([]*dom.Row, 0, len(rows))
	for _, row := range rows {
		if row.HasData() {
			out = append(out, row)
		}
	}
	return out
}

// repeatsHeader reports whether row is a copy of the header inside a separate
// data table: only th cells, the same folded titles as headerRow, or every
// non-empty cell holding a header keyword. A branch row such as
// "1 | FILIAL A | ... | Erro" fails all three because of its code cell.
func (r *Resolver) repeatsHeader(row, headerRow *dom.Row) bool {
	if row == nil || len(row.Cells) == 0 {
		return false
	}
	if !row.HasData() {
		return true
	}
	if headerRow != nil && sameTitles(row, headerRow) {
		return true
	}
	filled := 0
	for _, c := range row.Cells {
		text := vocab.Fold(c.Text)
		if text == "" {
			continue
		}
		if !vocab.ContainsAny(text, r.keywords) {
			return false
		}
		filled++
	}
	return filled > 0
}

func sameTitles(a, b *dom.Row) bool {
	if len(a.Cells) != len(b.Cells) {
		return false
	}
	for i := range a.Cells {
		if vocab.Fold(a.Cells[i].Text) != vocab.Fold(b.Cells[i].Text) {
			return false
		}
	}
	return true
}
