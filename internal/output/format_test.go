package output

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/crimson-sun/synccheck/internal/model"
)

var at = time.Date(2026, 10, 19, 8, 20, 0, 0, time.UTC)

func TestFormatLineOK(t *testing.T) {
	if got := FormatLine(model.OK(at)); got != "STATUS_OK" {
		t.Fatalf("FormatLine(OK) = %q", got)
	}
}

func TestFormatLineProblem(t *testing.T) {
	got := FormatLine(model.Problem("[002]: Erro de conexão", at))
	if got != "STATUS_PROBLEMA: [002]: Erro de conexão" {
		t.Fatalf("FormatLine() = %q", got)
	}
}

func TestFormatLineFlattensReason(t *testing.T) {
	got := FormatLine(model.Problem("[001]: linha 1\n\tlinha 2\r\n", at))
	if got != "STATUS_PROBLEMA: [001]: linha 1 linha 2" {
		t.Fatalf("FormatLine() = %q", got)
	}
	if got := FormatLine(model.Problem("  ", at)); got != "STATUS_PROBLEMA: unknown problem" {
		t.Fatalf("FormatLine(blank) = %q", got)
	}
}

func TestFormatLineTruncates(t *testing.T) {
	reason := strings.Repeat("é", MaxReasonLen)
	got := FormatLine(model.Problem(reason, at))

	if !strings.HasSuffix(got, "...") {
		t.Fatal("long reason should be truncated")
	}
	if len(got) > len(ProblemPrefix)+MaxReasonLen+3 {
		t.Fatalf("line too long: %d bytes", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a rune")
	}
}
