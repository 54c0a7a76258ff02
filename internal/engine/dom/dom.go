// Package dom parses a fetched dashboard into a read-only view of its tables.
package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is the parsed form of one HTML response. It is scoped to a single
// extraction pass.
type Document struct {
	Root   *html.Node
	Raw    string
	Tables []*Table
}

// Table is a table element and the rows that belong to it directly. Rows of
// nested tables are not included; nested tables appear as their own entries in
// Document.Tables.
type Table struct {
	Node  *html.Node
	Index int // position in document order
	ID    string
	Rows  []*Row
}

// Row is one tr element.
type Row struct {
	Node  *html.Node
	Cells []*Cell
}

// Cell is one td or th element with its whitespace-collapsed text.
type Cell struct {
	Node   *html.Node
	Text   string
	Header bool // th rather than td
}

// Parse builds a Document from raw HTML. Fragments are accepted; the parser
// wraps them the same way a browser would.
func Parse(raw string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := &Document{Root: root, Raw: raw}
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			doc.Tables = append(doc.Tables, newTable(n, len(doc.Tables)))
		}
		return true
	})
	return doc, nil
}

// Text returns the collapsed text content of the whole document.
func (d *Document) Text() string {
	return TextOf(d.Root)
}

// TableByID returns the first table whose id attribute equals id.
func (d *Document) TableByID(id string) *Table {
	for _, t := range d.Tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func newTable(n *html.Node, index int) *Table {
	t := &Table{Node: n, Index: index, ID: getAttr(n, "id")}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectRows(c, t)
	}
	return t
}

// collectRows gathers tr elements under n without descending into nested tables.
func collectRows(n *html.Node, t *Table) {
	if n.Type != html.ElementNode {
		return
	}
	switch n.DataAtom {
	case atom.Table:
		return
	case atom.Tr:
		t.Rows = append(t.Rows, newRow(n))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectRows(c, t)
	}
}

func newRow(n *html.Node) *Row {
	r := &Row{Node: n}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
			r.Cells = append(r.Cells, &Cell{
				Node:   c,
				Text:   textOf(c, true),
				Header: c.DataAtom == atom.Th,
			})
		}
	}
	return r
}

// FirstRow returns the first row of the table, or nil.
func (t *Table) FirstRow() *Row {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Texts returns the text of every cell in order.
func (r *Row) Texts() []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Text
	}
	return out
}

// HasData reports whether the row holds at least one td cell.
func (r *Row) HasData() bool {
	for _, c := range r.Cells {
		if !c.Header {
			return true
		}
	}
	return false
}

// Attr returns the value of the named attribute on the cell element itself.
func (c *Cell) Attr(name string) string {
	return getAttr(c.Node, name)
}

// AttrValues returns the non-empty values of the named attribute on the cell
// and on every element nested inside it, in document order.
func (c *Cell) AttrValues(name string) []string {
	var out []string
	walk(c.Node, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if n != c.Node && n.DataAtom == atom.Table {
			return false
		}
		if v := strings.TrimSpace(getAttr(n, name)); v != "" {
			out = append(out, v)
		}
		return true
	})
	return out
}

// TextOf returns the text content under n with runs of whitespace collapsed to
// a single space and the ends trimmed. Script and style bodies are ignored and
// br counts as whitespace.
func TextOf(n *html.Node) string {
	return textOf(n, false)
}

// textOf optionally leaves out tables nested below root, so a layout cell
// wrapping a whole dashboard does not read as a header cell.
func textOf(root *html.Node, skipTables bool) string {
	var b strings.Builder
	walk(root, func(n *html.Node) bool {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return false
			case atom.Table:
				if skipTables && n != root {
					return false
				}
			case atom.Br:
				b.WriteByte(' ')
			}
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// walk visits n and its descendants depth-first. Returning false from fn skips
// the children of the node it was called with.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
