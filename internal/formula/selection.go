package formula

// Edge marks anchors that sit on a synthetic, non-editable part of the
// display: a cell's bracket or the outer edge of the whole rule.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeftBracket
	EdgeRightBracket
	EdgeRuleStart
	EdgeRuleEnd
)

// Anchor is one end of a selection as the rendering surface sees it.
type Anchor struct {
	// Cell is set for anchors on an empty cell's placeholder and for bracket
	// edges. It is ignored when Path is set.
	Cell CellID
	// Path addresses the node under the cursor.
	Path LevelPath
	// Offset is the character offset within the node's label and Length the
	// label's length.
	Offset int
	Length int
	Edge   Edge
}

// AtStart reports whether the anchor is before the first character of its
// node. Any other offset counts as being after the node.
func (a Anchor) AtStart() bool { return a.Offset <= 0 }

// AtEnd reports whether the anchor is after the last character of its node.
func (a Anchor) AtEnd() bool { return a.Offset >= a.Length }

// IsPlaceholder reports whether the anchor sits on an empty cell rather than
// on a node.
func (a Anchor) IsPlaceholder() bool { return len(a.Path) == 0 && a.Edge == EdgeNone }

func (a Anchor) same(o Anchor) bool {
	return a.Cell == o.Cell && a.Path.Equal(o.Path) && a.Offset == o.Offset && a.Edge == o.Edge
}

// Selection is an insertion point or a range. Top precedes Bottom in display
// order; for an insertion point they are equal.
type Selection struct {
	Top    Anchor
	Bottom Anchor
}

// Point returns an insertion point selection.
func Point(a Anchor) Selection {
	return Selection{Top: a, Bottom: a}
}

// Span returns a range selection from top to bottom.
func Span(top, bottom Anchor) Selection {
	return Selection{Top: top, Bottom: bottom}
}

// IsRange reports whether the selection covers text.
func (s Selection) IsRange() bool { return !s.Top.same(s.Bottom) }

// Limit picks which end of a selection ResolveCell looks at.
type Limit int

const (
	// LimitBoth resolves to a cell only when both ends agree.
	LimitBoth Limit = iota
	LimitTop
	LimitBottom
)
