// Package ruledoc converts rules to and from YAML documents. Documents name
// inventory objects by symbol and abbreviation, so a rule can move between
// inventories that spell things the same way.
package ruledoc

import (
	"github.com/zjrosen/phonrule/internal/domain"
)

// Doc is the YAML form of one rule. Which fields are set depends on Kind.
type Doc struct {
	Name string          `yaml:"name"`
	Kind domain.RuleKind `yaml:"kind"`

	// Affix process rules.
	Input  []Node    `yaml:"input,omitempty"`
	Output []Mapping `yaml:"output,omitempty"`

	// Metathesis and regular rules.
	StrucDesc []Node `yaml:"struc_desc,omitempty"`

	// Metathesis rules give either Zones (run lengths) or the older
	// (start, limit) Indices.
	Zones                *domain.Zones         `yaml:"zones,omitempty"`
	Indices              *domain.LegacyIndices `yaml:"indices,omitempty"`
	MiddleWithLeftSwitch bool                  `yaml:"middle_with_left_switch,omitempty"`

	// Regular rules.
	RightHandSides []RightHandSide `yaml:"rhs,omitempty"`
}

// Node is one context. Exactly one of the fields is set; a placeholder leaf
// sets Placeholder to the kind it stands for.
type Node struct {
	Seg         string    `yaml:"seg,omitempty"`
	Class       string    `yaml:"class,omitempty"`
	Plus        []string  `yaml:"plus,omitempty"`
	Minus       []string  `yaml:"minus,omitempty"`
	Boundary    string    `yaml:"boundary,omitempty"`
	Var         bool      `yaml:"var,omitempty"`
	Seq         *[]Node   `yaml:"seq,omitempty"`
	Iter        *IterNode `yaml:"iter,omitempty"`
	Placeholder string    `yaml:"placeholder,omitempty"`
}

// IterNode repeats Of between Min and Max times; Max -1 is unbounded.
type IterNode struct {
	Min int  `yaml:"min"`
	Max int  `yaml:"max"`
	Of  Node `yaml:"of"`
}

// Placeholder kinds.
const (
	PlaceholderSegment  = "segment"
	PlaceholderClass    = "class"
	PlaceholderBoundary = "boundary"
)

// Mapping is one output item of an affix process rule. Columns are
// 1-based input positions.
type Mapping struct {
	Copy   int      `yaml:"copy,omitempty"`
	Modify int      `yaml:"modify,omitempty"`
	Class  string   `yaml:"class,omitempty"`
	Phones []string `yaml:"phones,omitempty"`
}

// RightHandSide is one rewrite of a regular rule. The environment is written
// as an environment string when it can be, and as nodes otherwise.
type RightHandSide struct {
	StrucChange []Node `yaml:"struc_change,omitempty"`
	Env         string `yaml:"env,omitempty"`
	Left        *Node  `yaml:"left,omitempty"`
	Right       *Node  `yaml:"right,omitempty"`
}
