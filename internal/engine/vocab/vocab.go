// Package vocab holds the keyword vocabulary used to recognise sync dashboard
// headers and error cells, and the ordered column rule table.
package vocab

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/synccheck/internal/model"
)

// Fold upper-cases s, strips diacritics and collapses whitespace so that
// "Cód. Local" and "COD.  LOCAL" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToUpper(folded)), " ")
}

// ContainsAny reports whether folded text contains any of the keywords.
// Keywords are expected to be folded already.
func ContainsAny(folded string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// Rule assigns Field to the first header cell that contains every All keyword,
// at least one Any keyword (when Any is non-empty) and no None keyword.
type Rule struct {
	Field model.Field
	All   []string
	Any   []string
	None  []string
}

// Match applies the full rule to folded header text.
func (r Rule) Match(folded string) bool {
	if ContainsAny(folded, r.None) {
		return false
	}
	for _, kw := range r.All {
		if !strings.Contains(folded, kw) {
			return false
		}
	}
	return len(r.Any) == 0 || ContainsAny(folded, r.Any)
}

// MatchWeak applies the rule with one requirement relaxed. The first All keyword
// is the anchor and stays mandatory; None exclusions still apply.
func (r Rule) MatchWeak(folded string) bool {
	if ContainsAny(folded, r.None) {
		return false
	}
	if len(r.All) == 0 {
		return len(r.Any) > 0 && ContainsAny(folded, r.Any)
	}
	if !strings.Contains(folded, r.All[0]) {
		return false
	}
	missing := 0
	for _, kw := range r.All[1:] {
		if !strings.Contains(folded, kw) {
			missing++
		}
	}
	if len(r.Any) > 0 && !ContainsAny(folded, r.Any) {
		missing++
	}
	return missing <= 1
}

type ruleFile struct {
	Rules []struct {
		Field string   `yaml:"field"`
		All   []string `yaml:"all"`
		Any   []string `yaml:"any"`
		None  []string `yaml:"none"`
	} `yaml:"rules"`
}

// LoadRules reads an ordered rule table from a YAML file of the form
//
//	rules:
//	  - field: SYNC_LOG
//	    all: [LOG, FILIAL, SINC]
//
// Keywords are folded on load.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules decodes the YAML rule table format accepted by LoadRules.
func ParseRules(data []byte) ([]Rule, error) {
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("parse rules: no rules defined")
	}

	rules := make([]Rule, 0, len(rf.Rules))
	for i, raw := range rf.Rules {
		field, err := model.ParseField(raw.Field)
		if err != nil {
			return nil, fmt.Errorf("parse rules: rule %d: %w", i, err)
		}
		if len(raw.All) == 0 && len(raw.Any) == 0 {
			return nil, fmt.Errorf("parse rules: rule %d (%s) has no keywords", i, field)
		}
		rules = append(rules, Rule{
			Field: field,
			All:   foldAll(raw.All),
			Any:   foldAll(raw.Any),
			None:  foldAll(raw.None),
		})
	}
	return rules, nil
}

func foldAll(keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if f := Fold(kw); f != "" {
			out = append(out, f)
		}
	}
	return out
}
