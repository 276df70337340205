package presentation

import (
	"time"

	"github.com/zjrosen/phonrule/internal/domain"
)

// RuleDTO represents a stored rule for presentation
type RuleDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Formulas  []string  `json:"formulas"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// FromDomainRule converts a rule and its rendered formulas to a DTO.
// formulas holds one entry per right-hand side.
func FromDomainRule(r domain.Rule, formulas []string) RuleDTO {
	if formulas == nil {
		formulas = []string{}
	}
	return RuleDTO{
		ID:       string(r.ID()),
		Name:     r.Name(),
		Kind:     string(r.Kind()),
		Formulas: formulas,
	}
}

// WithTimes returns d stamped with the store's timestamps.
func (d RuleDTO) WithTimes(created, updated time.Time) RuleDTO {
	d.CreatedAt = created.UTC()
	d.UpdatedAt = updated.UTC()
	return d
}
