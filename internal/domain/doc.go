// Package domain holds the phonological data model edited by the rule formula
// editor.
//
// The package contains only plain Go types and has no knowledge of rendering,
// persistence or the terminal UI.
//
// # Contexts
//
// A Context is one node of a rule's context tree. The set of node kinds is
// closed: SequenceContext, IterationContext, SegmentContext, ClassContext,
// BoundaryContext and Variable. Code that inspects contexts uses a type switch
// over those six types.
//
// Leaves optionally reference an inventory object (Phoneme, NaturalClass or
// BoundaryMarker). A leaf with no reference renders as a "?" placeholder.
//
// # Ownership
//
// Contexts held directly by a rule field are owned by the rule. Members of a
// SequenceContext are owned by the shared context pool on PhonData, which is
// why promoting a bare context into a sequence moves it into the pool.
// PhonData.DeleteContext unlinks every cross-reference of a node before marking
// it dead; any code that holds a node across a cascade checks Live first.
//
// # Rules
//
// AffixProcessRule, MetathesisRule and RegularRule implement Rule. A
// metathesis rule partitions its flat structural description into five zones
// stored as run lengths (Zones); start and limit indices are derived.
//
// # Snapshots
//
// PhonData.Snapshot and PhonData.Restore deep-copy the mutable state while
// keeping node identity, so a unit of work can be rolled back without
// invalidating the rule pointers held by editors.
package domain
