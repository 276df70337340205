package domain

// RuleRepository persists rules. Rules are stored by name; saving a rule
// whose name already exists replaces it.
type RuleRepository interface {
	// Save stores r, resolving inventory references against data.
	Save(data *PhonData, r Rule) error

	// Load reads the rule named name and adds it to data.
	// Returns RuleNotFoundError if no rule has that name.
	Load(data *PhonData, name string) (Rule, error)

	// List returns the stored rules ordered by name.
	List() ([]RuleSummary, error)

	// Delete removes the rule named name.
	// Returns RuleNotFoundError if no rule has that name.
	Delete(name string) error
}
