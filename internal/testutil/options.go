package testutil

import "github.com/zjrosen/phonrule/internal/domain"

// RegularOption configures a regular rule built by Builder.Regular.
type RegularOption func(*domain.RegularRule)

// LHS sets the structural description.
func LHS(cs ...domain.Context) RegularOption {
	return func(r *domain.RegularRule) { r.StrucDesc = cs }
}

// Change sets the structural change of the first right-hand side.
func Change(cs ...domain.Context) RegularOption {
	return func(r *domain.RegularRule) { r.RightHandSides[0].StrucChange = cs }
}

// Left sets the left context of the first right-hand side.
func Left(c domain.Context) RegularOption {
	return func(r *domain.RegularRule) { r.RightHandSides[0].LeftContext = c }
}

// Right sets the right context of the first right-hand side.
func Right(c domain.Context) RegularOption {
	return func(r *domain.RegularRule) { r.RightHandSides[0].RightContext = c }
}
