package formula

import (
	"fmt"

	"github.com/zjrosen/phonrule/internal/domain"
)

type cellTag int

const (
	tagNone cellTag = iota
	tagAmbiguous
	tagColumn
	tagLeftEmpty
	tagRightEmpty
	tagOutput
	tagStrucDesc
	tagStrucChange
	tagLeftContext
	tagRightContext
	tagLeftEnv
	tagLeftSwitch
	tagRightSwitch
	tagRightEnv
)

// CellID names a cell of a formula: either a fixed tag or, for affix input
// columns, the identity of the context heading the column.
type CellID struct {
	tag  cellTag
	node domain.ID
}

var (
	CellNone      = CellID{tag: tagNone}
	CellAmbiguous = CellID{tag: tagAmbiguous}

	CellLeftEmpty    = CellID{tag: tagLeftEmpty}
	CellRightEmpty   = CellID{tag: tagRightEmpty}
	CellOutput       = CellID{tag: tagOutput}
	CellStrucDesc    = CellID{tag: tagStrucDesc}
	CellStrucChange  = CellID{tag: tagStrucChange}
	CellLeftContext  = CellID{tag: tagLeftContext}
	CellRightContext = CellID{tag: tagRightContext}
	CellLeftEnv      = CellID{tag: tagLeftEnv}
	CellLeftSwitch   = CellID{tag: tagLeftSwitch}
	CellRightSwitch  = CellID{tag: tagRightSwitch}
	CellRightEnv     = CellID{tag: tagRightEnv}
)

// ColumnCell returns the cell of the affix input column headed by id.
func ColumnCell(id domain.ID) CellID {
	return CellID{tag: tagColumn, node: id}
}

// Valid reports whether c names an actual cell.
func (c CellID) Valid() bool {
	return c.tag != tagNone && c.tag != tagAmbiguous
}

// IsColumn reports whether c is an affix input column.
func (c CellID) IsColumn() bool { return c.tag == tagColumn }

// Node returns the heading context identity of a column cell.
func (c CellID) Node() domain.ID { return c.node }

func (c CellID) String() string {
	switch c.tag {
	case tagNone:
		return "none"
	case tagAmbiguous:
		return "ambiguous"
	case tagColumn:
		return "column:" + string(c.node)
	case tagLeftEmpty:
		return "left-empty"
	case tagRightEmpty:
		return "right-empty"
	case tagOutput:
		return "output"
	case tagStrucDesc:
		return "struc-desc"
	case tagStrucChange:
		return "struc-change"
	case tagLeftContext:
		return "left-context"
	case tagRightContext:
		return "right-context"
	case tagLeftEnv:
		return "left-env"
	case tagLeftSwitch:
		return "left-switch"
	case tagRightSwitch:
		return "right-switch"
	case tagRightEnv:
		return "right-env"
	}
	return fmt.Sprintf("cell(%d)", int(c.tag))
}

// FieldTag names the rule field a level path step descends into.
type FieldTag int

const (
	FieldInput FieldTag = iota + 1
	FieldOutput
	FieldMembers
	FieldMember
	FieldStrucDesc
	FieldStrucChange
	FieldLeftContext
	FieldRightContext
)

func (f FieldTag) String() string {
	switch f {
	case FieldInput:
		return "input"
	case FieldOutput:
		return "output"
	case FieldMembers:
		return "members"
	case FieldMember:
		return "member"
	case FieldStrucDesc:
		return "struc-desc"
	case FieldStrucChange:
		return "struc-change"
	case FieldLeftContext:
		return "left-context"
	case FieldRightContext:
		return "right-context"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// PathStep is one level of a LevelPath.
type PathStep struct {
	Field FieldTag
	Index int
}

// LevelPath addresses a node from the rule root, outermost step first. A node
// held directly by a rule field has a one-step path; a sequence member adds a
// Members step. Single-context fields (a regular rule's left and right
// context) use index 0. Regular rule paths are relative to the right-hand
// side the editor is bound to.
type LevelPath []PathStep

// Equal reports whether two paths are identical.
func (p LevelPath) Equal(o LevelPath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

func (p LevelPath) String() string {
	s := ""
	for i, st := range p {
		if i > 0 {
			s += "/"
		}
		s += fmt.Sprintf("%s[%d]", st.Field, st.Index)
	}
	return s
}

// descend follows one non-root step from cur.
func descend(cur domain.Object, st PathStep) (domain.Object, bool) {
	switch st.Field {
	case FieldMembers:
		seq, ok := cur.(*domain.SequenceContext)
		if !ok || st.Index < 0 || st.Index >= len(seq.Members) {
			return nil, false
		}
		return seq.Members[st.Index], true
	case FieldMember:
		it, ok := cur.(*domain.IterationContext)
		if !ok || it.Member == nil || st.Index != 0 {
			return nil, false
		}
		return it.Member, true
	}
	return nil, false
}

func inRange(i, n int) bool { return i >= 0 && i < n }
