package sqlite

import (
	"time"

	"github.com/zjrosen/phonrule/internal/domain"
)

// RuleModel is one row of the rules table. Body holds the rule's YAML
// document; timestamps are Unix seconds.
type RuleModel struct {
	Name      string
	RuleID    string
	Kind      string
	Body      string
	CreatedAt int64
	UpdatedAt int64
}

// StoredRule describes a saved rule without decoding it.
type StoredRule struct {
	domain.RuleSummary
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *RuleModel) toSummary() domain.RuleSummary {
	return domain.RuleSummary{
		ID:   domain.ID(m.RuleID),
		Name: m.Name,
		Kind: domain.RuleKind(m.Kind),
	}
}

func (m *RuleModel) toStored() StoredRule {
	return StoredRule{
		RuleSummary: m.toSummary(),
		CreatedAt:   time.Unix(m.CreatedAt, 0),
		UpdatedAt:   time.Unix(m.UpdatedAt, 0),
	}
}
