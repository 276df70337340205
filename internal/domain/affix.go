package domain

// MappingKind identifies the concrete type of a Mapping.
type MappingKind int

const (
	MapCopyFromInput MappingKind = iota
	MapInsertPhones
	MapInsertNaturalClass
	MapModifyFromInput
)

func (k MappingKind) String() string {
	switch k {
	case MapCopyFromInput:
		return "copy-from-input"
	case MapInsertPhones:
		return "insert-phones"
	case MapInsertNaturalClass:
		return "insert-natural-class"
	case MapModifyFromInput:
		return "modify-from-input"
	}
	return "unknown"
}

// Mapping is one item of an affix process rule's output.
type Mapping interface {
	Object
	MappingKind() MappingKind
	mapping()
}

// CopyFromInput copies the input matched by Content.
type CopyFromInput struct {
	base
	Content Context
}

// InsertPhones inserts literal phonemes.
type InsertPhones struct {
	base
	Phonemes []*Phoneme
}

// InsertNaturalClass inserts a segment of a natural class.
type InsertNaturalClass struct {
	base
	Class *NaturalClass
}

// ModifyFromInput copies the input matched by Content, changed by the
// features of Modification.
type ModifyFromInput struct {
	base
	Content      Context
	Modification *NaturalClass
}

func (*CopyFromInput) MappingKind() MappingKind      { return MapCopyFromInput }
func (*InsertPhones) MappingKind() MappingKind       { return MapInsertPhones }
func (*InsertNaturalClass) MappingKind() MappingKind { return MapInsertNaturalClass }
func (*ModifyFromInput) MappingKind() MappingKind    { return MapModifyFromInput }

func (*CopyFromInput) mapping()      {}
func (*InsertPhones) mapping()       {}
func (*InsertNaturalClass) mapping() {}
func (*ModifyFromInput) mapping()    {}

func NewCopyFromInput(content Context) *CopyFromInput {
	return &CopyFromInput{base: newBase(), Content: content}
}

func NewInsertPhones(phonemes ...*Phoneme) *InsertPhones {
	return &InsertPhones{base: newBase(), Phonemes: phonemes}
}

func NewInsertNaturalClass(nc *NaturalClass) *InsertNaturalClass {
	return &InsertNaturalClass{base: newBase(), Class: nc}
}

func NewModifyFromInput(content Context, nc *NaturalClass) *ModifyFromInput {
	return &ModifyFromInput{base: newBase(), Content: content, Modification: nc}
}

// MappingContent returns the input context a mapping refers to, or nil for
// mappings that insert new material.
func MappingContent(m Mapping) Context {
	switch x := m.(type) {
	case *CopyFromInput:
		return x.Content
	case *ModifyFromInput:
		return x.Content
	}
	return nil
}

// AffixProcessRule rewrites its Input columns into Output mappings.
type AffixProcessRule struct {
	ruleBase
	Input  []Context
	Output []Mapping
}

// NewAffixProcessRule creates a rule in its initial shape: a single variable
// input column copied unchanged to the output.
func NewAffixProcessRule(name string) *AffixProcessRule {
	v := NewVariable()
	return &AffixProcessRule{
		ruleBase: ruleBase{base: newBase(), name: name},
		Input:    []Context{v},
		Output:   []Mapping{NewCopyFromInput(v)},
	}
}

func (r *AffixProcessRule) Kind() RuleKind { return RuleAffixProcess }

func (r *AffixProcessRule) Roots() []Context { return r.Input }

// InputIndex returns the column position of c in Input, or -1.
func (r *AffixProcessRule) InputIndex(c Context) int {
	return IndexOf(r.Input, c)
}

func (r *AffixProcessRule) clone(c *cloner) Rule {
	out := &AffixProcessRule{ruleBase: r.ruleBase}
	out.Input = c.contexts(r.Input)
	out.Output = make([]Mapping, len(r.Output))
	for i, m := range r.Output {
		out.Output[i] = c.mapping(m)
	}
	return out
}

func (r *AffixProcessRule) restore(from Rule) {
	src := from.(*AffixProcessRule)
	r.name = src.name
	r.Input = src.Input
	r.Output = src.Output
}
