package domain

// RuleKind identifies the concrete type of a Rule.
type RuleKind string

const (
	RuleAffixProcess RuleKind = "affix-process"
	RuleMetathesis   RuleKind = "metathesis"
	RuleRegular      RuleKind = "regular"
)

// Rule is a phonological or morphological rule edited as a formula.
type Rule interface {
	Object
	Name() string
	SetName(name string)
	Kind() RuleKind
	// Roots returns the contexts held directly by the rule.
	Roots() []Context
	clone(c *cloner) Rule
	restore(from Rule)
}

type ruleBase struct {
	base
	name string
}

func (r *ruleBase) Name() string { return r.name }

func (r *ruleBase) SetName(name string) { r.name = name }

// RuleSummary is the listing view of a stored rule.
type RuleSummary struct {
	ID   ID
	Name string
	Kind RuleKind
}

// Summarize returns the listing view of r.
func Summarize(r Rule) RuleSummary {
	return RuleSummary{ID: r.ID(), Name: r.Name(), Kind: r.Kind()}
}
