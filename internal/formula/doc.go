// Package formula is the structural editor behind a rule formula display.
//
// A formula is a row of cells. Each cell holds an ordered list of items
// (contexts, or output mappings for affix rules). The rendering surface
// reports cursors as Anchors (a level path into the rule, a character offset
// and the label length), and the editor turns them into cells and item
// indices, inserts and removes items, and returns a Result telling the
// surface where the cursor goes next.
//
// Editor holds the algorithms shared by every rule type. AffixEditor,
// MetathesisEditor and RegularEditor supply the cell layout and the rule
// bookkeeping: mapping rewrites and the last-variable guards for affix rules,
// zone run lengths for metathesis rules, and left/right environments for
// regular rules.
//
// Every mutation runs inside one UnitOfWork. Refused edits return an error
// before the unit opens; selections that do not resolve to a single cell are
// a silent no-op reported as CellNone.
package formula
