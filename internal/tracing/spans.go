package tracing

// Span attribute keys.
const (
	AttrUnitID    = "unit.id"
	AttrUnitName  = "unit.name"
	AttrUnitDepth = "unit.depth"
	AttrRuleID    = "rule.id"
	AttrRuleName  = "rule.name"
	AttrRuleKind  = "rule.kind"

	AttrChangeSize = "change.size"
	AttrRolledBack = "unit.rolled_back"
)

// Span name prefixes.
const (
	SpanPrefixUnit  = "unit."
	SpanPrefixStore = "store."
)

// Span event names.
const (
	EventRolledBack = "unit.rolled_back"
	EventUndo       = "history.undo"
	EventRedo       = "history.redo"
)
