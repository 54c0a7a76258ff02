package vocab

import "github.com/crimson-sun/synccheck/internal/model"

// HeaderKeywords identifies a row as the header of a sync dashboard
// (log, branch, date, time, send and sync vocabulary).
func HeaderKeywords() []string {
	return []string{"LOG", "FILIAL", "DATA", "HORA", "ENV", "SINC"}
}

// DefaultRules returns the built-in column rule table, highest priority first.
// The RECEB exclusions keep the receive-side date/time columns that sit next to
// the send columns on the Tecnicon dashboard from being claimed.
func DefaultRules() []Rule {
	return []Rule{
		{Field: model.SyncLog, All: []string{"LOG", "FILIAL", "SINC"}},
		{Field: model.SendDate, All: []string{"DATA", "ENV", "ULT"}, None: []string{"RECEB"}},
		{Field: model.SendTime, All: []string{"HORA"}, Any: []string{"ENV", "ULT"}, None: []string{"RECEB"}},
		{Field: model.BranchLabel, All: []string{"COD"}, Any: []string{"LOCAL", "FILIAL"}},
	}
}

// FailureWords flags a cell whose folded text mentions a failure.
func FailureWords() []string {
	return []string{"ERRO", "ERROR", "FALHA", "FAILURE", "FAILED", "INVALID", "INVALIDO", "EXCEPTION", "EXCECAO"}
}

// HTTPFailureCodes are matched as plain substrings of the cell text.
func HTTPFailureCodes() []string {
	return []string{"400", "401", "403", "404", "500", "502", "503", "504"}
}

// WarningColors are background values that mark a cell as warning or danger.
func WarningColors() []string {
	return []string{
		"yellow", "#ffff00", "#ff0",
		"red", "#ff0000", "#f00",
		"orange", "#ffa500",
	}
}

// ErrorClassTokens flag a cell whose CSS class contains one of them.
func ErrorClassTokens() []string {
	return []string{"error", "erro", "danger", "fail", "invalid"}
}
