package rows

import (
	"strings"

	"github.com/crimson-sun/synccheck/internal/engine/dom"
	"github.com/crimson-sun/synccheck/internal/engine/vocab"
)

// Detector decides whether a dashboard cell carries an error indication when
// no dedicated log column is known.
type Detector struct {
	colors  map[string]struct{}
	words   []string
	codes   []string
	classes []string
}

// NewDetector builds a Detector from explicit indicator sets. Colors and class
// tokens are compared case-insensitively; words are folded.
func NewDetector(colors, words, codes, classes []string) *Detector {
	d := &Detector{
		colors: make(map[string]struct{}, len(colors)),
		codes:  codes,
	}
	for _, c := range colors {
		d.colors[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	for _, w := range words {
		if f := vocab.Fold(w); f != "" {
			d.words = append(d.words, f)
		}
	}
	for _, c := range classes {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			d.classes = append(d.classes, c)
		}
	}
	return d
}

// DefaultDetector uses the built-in indicator vocabulary.
func DefaultDetector() *Detector {
	return NewDetector(vocab.WarningColors(), vocab.FailureWords(), vocab.HTTPFailureCodes(), vocab.ErrorClassTokens())
}

// Flag reports whether cell is error-bearing. A cell without text is never
// flagged, whatever its styling.
func (d *Detector) Flag(cell *dom.Cell) bool {
	text := strings.TrimSpace(cell.Text)
	if text == "" {
		return false
	}
	return d.warningColor(cell) || d.failureText(text) || d.errorClass(cell)
}

func (d *Detector) warningColor(cell *dom.Cell) bool {
	for _, style := range cell.AttrValues("style") {
		for _, decl := range strings.Split(style, ";") {
			prop, value, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			switch strings.ToLower(strings.TrimSpace(prop)) {
			case "background", "background-color":
				if d.anyColor(strings.Fields(value)) {
					return true
				}
			}
		}
	}
	for _, bg := range cell.AttrValues("bgcolor") {
		if d.anyColor([]string{bg}) {
			return true
		}
	}
	return false
}

func (d *Detector) anyColor(tokens []string) bool {
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(tok), "!important"))
		if _, ok := d.colors[tok]; ok {
			return true
		}
	}
	return false
}

func (d *Detector) failureText(text string) bool {
	if vocab.ContainsAny(vocab.Fold(text), d.words) {
		return true
	}
	for _, code := range d.codes {
		if strings.Contains(text, code) {
			return true
		}
	}
	return false
}

func (d *Detector) errorClass(cell *dom.Cell) bool {
	for _, class := range cell.AttrValues("class") {
		class = strings.ToLower(class)
		for _, tok := range d.classes {
			if strings.Contains(class, tok) {
				return true
			}
		}
	}
	return false
}
