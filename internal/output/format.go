package output

import (
	"strings"
	"unicode/utf8"

	"github.com/crimson-sun/synccheck/internal/model"
)

const (
	// OKLine is printed for a healthy run.
	OKLine = "STATUS_OK"
	// ProblemPrefix starts the line printed for any failure.
	ProblemPrefix = "STATUS_PROBLEMA: "

	// MaxReasonLen caps the reason, in bytes, so one bad cell cannot flood the
	// monitoring item.
	MaxReasonLen = 2048
)

// FormatLine renders v as the single line the monitoring scheduler parses.
// The reason is flattened to one line and truncated to MaxReasonLen.
func FormatLine(v model.Verdict) string {
	if v.IsOK() {
		return OKLine
	}
	reason := strings.Join(strings.Fields(v.Reason), " ")
	if reason == "" {
		reason = "unknown problem"
	}
	return ProblemPrefix + truncate(reason, MaxReasonLen)
}

// truncate cuts s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
