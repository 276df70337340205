// Package formulaview draws a rule formula as one line of text. It is the
// rendering surface the playground and the show command put in front of a
// formula.Editor.
package formulaview

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/formula"
	"github.com/zjrosen/phonrule/internal/txn"
	"github.com/zjrosen/phonrule/internal/ui/styles"
)

// Glyphs used around items.
const (
	Caret = "▏"
	Empty = "∅"
)

// Cursor places the caret. Index -1 is the start of Cell.
type Cursor struct {
	Cell      formula.CellID
	Index     int
	Placement formula.Placement
}

// CursorFor returns the cursor an edit result asks for.
func CursorFor(r formula.Result) Cursor {
	return Cursor{Cell: r.Cell, Index: r.Index, Placement: r.Placement}
}

// Selection returns the insertion point at c.
func (c Cursor) Selection(e *formula.Editor) formula.Selection {
	return formula.Point(e.AnchorAt(c.Cell, c.Index, c.Placement))
}

// Options control Render.
type Options struct {
	Cursor *Cursor
	// Width wraps the line; 0 leaves it unwrapped.
	Width int
	// Plain drops all styling.
	Plain bool
	// Mark wraps the rendered text of each cell, for example in a
	// bubblezone mark.
	Mark func(cell formula.CellID, s string) string
}

// piece is a run of output: a cell, or the notation between cells when cell
// is formula.CellNone.
type piece struct {
	cell   formula.CellID
	plain  string
	styled string
}

// Render draws e's formula.
func Render(e *formula.Editor, opts Options) string {
	var b strings.Builder
	for _, p := range layout(e, opts) {
		s := p.styled
		if opts.Plain {
			s = p.plain
		}
		if opts.Mark != nil && p.cell.Valid() {
			s = opts.Mark(p.cell, s)
		}
		b.WriteString(s)
	}
	if opts.Width > 0 {
		return wordwrap.String(b.String(), opts.Width)
	}
	return b.String()
}

// Plain draws e's formula without styling or cursor.
func Plain(e *formula.Editor) string {
	return Render(e, Options{Plain: true})
}

// Describer describes the rule behind e for change diffs.
func Describer(e *formula.Editor) txn.Describer {
	return func() string {
		return e.Rule().Name() + ": " + Plain(e)
	}
}

// Legend returns a line naming each cell, aligned under Plain(e).
func Legend(e *formula.Editor) string {
	var b strings.Builder
	for _, p := range layout(e, Options{Plain: true}) {
		w := runewidth.StringWidth(p.plain)
		name := ""
		if p.cell.Valid() {
			name = CellName(e, p.cell)
		}
		if runewidth.StringWidth(name) > w {
			name = runewidth.Truncate(name, w, "")
		}
		b.WriteString(runewidth.FillRight(name, w))
	}
	return strings.TrimRight(b.String(), " ")
}

// CellName is the short name shown for cell.
func CellName(e *formula.Editor, cell formula.CellID) string {
	switch cell {
	case formula.CellStrucDesc:
		return "SD"
	case formula.CellStrucChange:
		return "SC"
	case formula.CellLeftContext, formula.CellLeftEmpty:
		if e.Rule().Kind() == domain.RuleAffixProcess {
			return "^"
		}
		return "left"
	case formula.CellRightContext, formula.CellRightEmpty:
		if e.Rule().Kind() == domain.RuleAffixProcess {
			return "$"
		}
		return "right"
	case formula.CellLeftEnv:
		return "lenv"
	case formula.CellRightEnv:
		return "renv"
	case formula.CellLeftSwitch:
		return "sw1"
	case formula.CellRightSwitch:
		return "sw2"
	case formula.CellOutput:
		return "out"
	}
	if cell.IsColumn() {
		for i, c := range e.Cells() {
			if c == cell {
				// The left sentinel comes first.
				return strconv.Itoa(i)
			}
		}
	}
	return ""
}

func layout(e *formula.Editor, opts Options) []piece {
	v := &viewer{e: e, cursor: opts.Cursor}
	switch e.Rule().Kind() {
	case domain.RuleAffixProcess:
		return v.affix()
	case domain.RuleMetathesis:
		return v.metathesis()
	}
	return v.regular()
}

type viewer struct {
	e      *formula.Editor
	cursor *Cursor
	out    []piece
}

func (v *viewer) sep(s string) {
	v.out = append(v.out, piece{cell: formula.CellNone, plain: s, styled: styles.OperatorStyle.Render(s)})
}

// space separates cells without notation.
func (v *viewer) space() {
	v.out = append(v.out, piece{cell: formula.CellNone, plain: " ", styled: " "})
}

// cell adds cell. An empty cell shows Empty unless it is a sentinel, which
// shows only the caret.
func (v *viewer) cell(cell formula.CellID, sentinel bool) {
	items := v.e.Items(cell)
	here := v.cursor != nil && v.cursor.Cell == cell
	var plain, styled strings.Builder
	caret := func() {
		plain.WriteString(Caret)
		styled.WriteString(styles.CursorStyle.Render(Caret))
	}

	if len(items) == 0 {
		if here {
			caret()
		}
		if !sentinel {
			plain.WriteString(Empty)
			styled.WriteString(styles.PlaceholderStyle.Render(Empty))
		}
		v.out = append(v.out, piece{cell: cell, plain: plain.String(), styled: styled.String()})
		return
	}

	if here && v.cursor.Index < 0 {
		caret()
	}
	for i, obj := range items {
		if i > 0 {
			plain.WriteString(" ")
			styled.WriteString(" ")
		}
		if here && v.cursor.Index == i && v.cursor.Placement == formula.PlaceInitial {
			caret()
		}
		label := v.e.Label(obj)
		plain.WriteString(label)
		styled.WriteString(itemStyle(obj, label).Render(label))
		if here && v.cursor.Index == i && v.cursor.Placement == formula.PlaceFinal {
			caret()
		}
	}
	v.out = append(v.out, piece{cell: cell, plain: plain.String(), styled: styled.String()})
}

// regular draws "SD → SC / left _ right".
func (v *viewer) regular() []piece {
	cells := v.e.Cells()
	v.cell(cells[0], false)
	v.sep(" → ")
	v.cell(cells[1], false)
	v.sep(" /")
	v.envCell(cells[2])
	v.sep(" _")
	v.envCell(cells[3])
	return v.out
}

func (v *viewer) envCell(cell formula.CellID) {
	if v.e.ItemCount(cell) > 0 || (v.cursor != nil && v.cursor.Cell == cell) {
		v.space()
	}
	v.cell(cell, cell == formula.CellLeftEmpty || cell == formula.CellRightEmpty)
}

// affix draws "| col | col | → out".
func (v *viewer) affix() []piece {
	cells := v.e.Cells()
	last := len(cells) - 1
	for i, c := range cells[:last] {
		switch {
		case c == formula.CellLeftEmpty:
			v.cell(c, true)
			v.sep("|")
		case c == formula.CellRightEmpty:
			v.cell(c, true)
		default:
			v.space()
			v.cell(c, false)
			v.space()
			if i < last-1 {
				v.sep("|")
			}
		}
	}
	v.sep(" → ")
	v.cell(cells[last], false)
	return v.out
}

// metathesis draws "env | sw1 | sw2 | env".
func (v *viewer) metathesis() []piece {
	for i, c := range v.e.Cells() {
		if i > 0 {
			v.sep(" | ")
		}
		v.cell(c, false)
	}
	return v.out
}

func itemStyle(obj domain.Object, label string) lipgloss.Style {
	if strings.Contains(label, "?") {
		return styles.PlaceholderStyle
	}
	switch obj.(type) {
	case *domain.ClassContext:
		return styles.ClassStyle
	case *domain.BoundaryContext:
		return styles.BoundaryStyle
	case *domain.Variable:
		return styles.VariableStyle
	case domain.Mapping:
		return styles.MappingStyle
	}
	return styles.SegmentStyle
}
