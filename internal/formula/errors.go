package formula

import "errors"

var (
	// ErrLastVariable refuses an edit that would leave an affix rule input
	// without a variable.
	ErrLastVariable = errors.New("the last variable of the input cannot be removed")

	// ErrLastVariableMapping refuses an edit that would leave an affix rule
	// output without a mapping copying a variable.
	ErrLastVariableMapping = errors.New("the last output mapping copying a variable cannot be removed")

	// ErrBadIndex refuses an index insertion naming a missing input column.
	ErrBadIndex = errors.New("no input column with that index")

	// ErrNotApplicable is returned by rule-specific operations when the
	// selection does not address something the operation applies to.
	ErrNotApplicable = errors.New("operation does not apply to the selection")
)
