// Package testdata provides dashboard fixtures shared by the engine tests.
package testdata

import (
	_ "embed"
	"fmt"
	"html"
	"strings"
)

//go:embed dashboard.html
var dashboardHTML string

// SampleDate and SampleTime are the send timestamp of the first branch in the
// embedded dashboard.
const (
	SampleDate = "19/10/2026"
	SampleTime = "08:15:30"
)

// SampleDashboard returns a captured "Status Sincronismo" view with three
// healthy branches.
func SampleDashboard() string {
	return dashboardHTML
}

// RealHeaders returns the column titles of the production dashboard layout.
func RealHeaders() []string {
	return []string{
		"Cód. Local", "Filial", "Ultimo Reg. Receb.", "Data Ult. Reg. Receb.",
		"Hora Ult. Reg. Receb.", "Ultimo Reg. Env.", "Qtde Falta Receber",
		"Data Ult. Reg. Env.", "Hora Ultimo Reg. Env.", "Qtde Falta Enviar",
		"Qtde Receber", "Qtde Enviar", "Log Filial p/ Sinc.", "Data Atual",
		"Log Sinc. p/ Filial", "Hr Atual",
	}
}

// Row builds a data row of width cells, filling the given column indices.
func Row(width int, values map[int]string) []string {
	row := make([]string, width)
	for idx, v := range values {
		if idx >= 0 && idx < width {
			row[idx] = v
		}
	}
	return row
}

// Dashboard renders headers and rows the way the ERP does: a tblHead table
// holding th titles followed by a tblBody table whose cells wrap values in a div.
func Dashboard(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("<html><body><div class=\"gridVista\">\n<table id=\"tblHead\"><thead><tr>")
	for _, h := range headers {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr></thead></table>\n<table id=\"tblBody\"><tbody>\n")
	writeRows(&b, rows)
	b.WriteString("</tbody></table>\n</div></body></html>")
	return b.String()
}

// SingleTable renders one table whose first row holds the header titles as
// plain td cells, as older layouts of the view do.
func SingleTable(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("<html><body><table>\n<tr>")
	for _, h := range headers {
		fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(h))
	}
	b.WriteString("</tr>\n")
	writeRows(&b, rows)
	b.WriteString("</table></body></html>")
	return b.String()
}

func writeRows(b *strings.Builder, rows [][]string) {
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(b, "<td><div>%s</div></td>", html.EscapeString(cell))
		}
		b.WriteString("</tr>\n")
	}
}
