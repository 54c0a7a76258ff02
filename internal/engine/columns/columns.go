// Package columns resolves which header column carries each semantic field of
// the sync dashboard.
package columns

import (
	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/engine/vocab"
	"github.com/crimson-sun/synccheck/internal/model"
)

// Positions holds the fixed column index used for a field when no header rule
// matched. A negative index disables the fallback for that field.
type Positions map[model.Field]int

// DefaultPositions returns the indices of the production dashboard layout.
func DefaultPositions() Positions {
	return Positions{
		model.BranchLabel: 0,
		model.SendDate:    7,
		model.SendTime:    8,
		model.SyncLog:     12,
	}
}

// Mapper assigns fields to columns in three passes: full rule match, relaxed
// rule match, then configured positions. The first assignment of a field wins.
type Mapper struct {
	rules     []vocab.Rule
	positions Positions
	logger    *zap.Logger
}

// New creates a Mapper. Rules are applied in order; a nil logger disables logging.
func New(rules []vocab.Rule, positions Positions, logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{rules: rules, positions: positions, logger: logger}
}

// Map resolves the header row texts into a ColumnMap. Fields that no pass could
// place stay absent.
func (m *Mapper) Map(header []string) model.ColumnMap {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = vocab.Fold(h)
	}

	var cm model.ColumnMap
	m.strongPass(&cm, folded, header)
	m.weakPass(&cm, folded, header)
	m.positionalPass(&cm, len(header))

	m.logger.Debug("columns mapped",
		zap.Int("header_cells", len(header)),
		zap.Stringer("columns", cm),
	)
	return cm
}

func (m *Mapper) strongPass(cm *model.ColumnMap, folded, header []string) {
	for i, text := range folded {
		if text == "" {
			continue
		}
		for _, rule := range m.rules {
			if cm.Has(rule.Field) || !rule.Match(text) {
				continue
			}
			if cm.Assign(rule.Field, i) {
				m.assigned("strong", rule.Field, i, header[i])
				break
			}
		}
	}
}

func (m *Mapper) weakPass(cm *model.ColumnMap, folded, header []string) {
	for _, rule := range m.rules {
		if cm.Has(rule.Field) {
			continue
		}
		for i, text := range folded {
			if text == "" || cm.Claimed(i) || !rule.MatchWeak(text) {
				continue
			}
			if cm.Assign(rule.Field, i) {
				m.assigned("weak", rule.Field, i, header[i])
				break
			}
		}
	}
}

func (m *Mapper) positionalPass(cm *model.ColumnMap, width int) {
	for _, f := range model.Fields() {
		idx, ok := m.positions[f]
		if !ok || idx < 0 || idx >= width || cm.Has(f) {
			continue
		}
		if cm.Assign(f, idx) {
			m.assigned("positional", f, idx, "")
		}
	}
}

func (m *Mapper) assigned(pass string, f model.Field, idx int, header string) {
	m.logger.Debug("column assigned",
		zap.String("pass", pass),
		zap.Stringer("field", f),
		zap.Int("index", idx),
		zap.String("header", header),
	)
}
