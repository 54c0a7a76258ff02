package dom

import (
	"reflect"
	"testing"
)

const nested = `<html><body>
<table id="outer">
  <tr><th>Cód. Local</th><th>Log</th></tr>
  <tr><td>001</td><td>
    <table id="inner"><tr><td>nested</td></tr></table>
  </td></tr>
</table>
<table><tbody><tr><td>  spaced
   text </td><td>a<br>b</td></tr></tbody></table>
</body></html>`

func TestParseTablesInDocumentOrder(t *testing.T) {
	doc, err := Parse(nested)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(doc.Tables) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(doc.Tables))
	}
	ids := []string{doc.Tables[0].ID, doc.Tables[1].ID, doc.Tables[2].ID}
	if want := []string{"outer", "inner", ""}; !reflect.DeepEqual(ids, want) {
		t.Errorf("table ids = %v, want %v", ids, want)
	}
	for i, tbl := range doc.Tables {
		if tbl.Index != i {
			t.Errorf("table %d has Index %d", i, tbl.Index)
		}
	}
}

func TestRowsExcludeNestedTables(t *testing.T) {
	doc, err := Parse(nested)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	outer := doc.TableByID("outer")
	if outer == nil {
		t.Fatal("outer table not found")
	}
	if len(outer.Rows) != 2 {
		t.Fatalf("outer rows = %d, want 2", len(outer.Rows))
	}
	if got := outer.Rows[1].Cells[1].Text; got != "" {
		t.Errorf("cell text should leave out nested tables, got %q", got)
	}
	inner := doc.TableByID("inner")
	if inner == nil || len(inner.Rows) != 1 {
		t.Fatalf("inner table should own exactly one row")
	}
}

func TestCellText(t *testing.T) {
	doc, err := Parse(nested)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	header := doc.Tables[0].FirstRow()
	if got := header.Texts(); !reflect.DeepEqual(got, []string{"Cód. Local", "Log"}) {
		t.Errorf("header texts = %q", got)
	}
	if header.HasData() {
		t.Error("a th-only row should not report data cells")
	}

	last := doc.Tables[2].FirstRow()
	if got := last.Texts(); !reflect.DeepEqual(got, []string{"spaced text", "a b"}) {
		t.Errorf("texts = %q", got)
	}
	if !last.HasData() {
		t.Error("td row should report data cells")
	}
}

func TestCellAttrValues(t *testing.T) {
	doc, err := Parse(`<table><tr><td class="x" style="color: red"><div style="background-color: yellow">!</div></td></tr></table>`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	cell := doc.Tables[0].Rows[0].Cells[0]
	if got := cell.Attr("class"); got != "x" {
		t.Errorf("Attr(class) = %q", got)
	}
	want := []string{"color: red", "background-color: yellow"}
	if got := cell.AttrValues("style"); !reflect.DeepEqual(got, want) {
		t.Errorf("AttrValues(style) = %q, want %q", got, want)
	}
}

func TestParseWithoutTables(t *testing.T) {
	doc, err := Parse("<p>Sessão expirada</p><script>var x = '<table>';</script>")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(doc.Tables) != 0 {
		t.Errorf("expected no tables, got %d", len(doc.Tables))
	}
	if got := doc.Text(); got != "Sessão expirada" {
		t.Errorf("Text() = %q", got)
	}
}
