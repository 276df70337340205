package inventory

import (
	"slices"
	"strings"

	"github.com/zjrosen/phonrule/internal/domain"
)

// MergeStats counts what a merge changed.
type MergeStats struct {
	Added   int
	Updated int
	// Kept counts dst entries missing from src. They stay, since rules may
	// still reference them.
	Kept int
}

// Merge updates dst's inventory from src in place. Entries are matched by
// phoneme name, class abbreviation and boundary symbol; matched entries keep
// their identity so every context referring to them sees the new values.
func Merge(dst, src *domain.PhonData) MergeStats {
	var st MergeStats

	phonemes := make(map[string]*domain.Phoneme, len(dst.Phonemes))
	for _, p := range dst.Phonemes {
		phonemes[p.Name] = p
	}
	seen := make(map[*domain.Phoneme]bool)
	// translate maps src phonemes to the dst phoneme standing for them.
	translate := make(map[*domain.Phoneme]*domain.Phoneme, len(src.Phonemes))
	for _, sp := range src.Phonemes {
		if dp, ok := phonemes[sp.Name]; ok {
			if !slices.Equal(dp.Representations, sp.Representations) {
				dp.Representations = append([]string(nil), sp.Representations...)
				st.Updated++
			}
			translate[sp] = dp
			seen[dp] = true
			continue
		}
		dst.Phonemes = append(dst.Phonemes, sp)
		translate[sp] = sp
		seen[sp] = true
		st.Added++
	}
	for _, p := range dst.Phonemes {
		if !seen[p] {
			st.Kept++
		}
	}

	classes := make(map[string]*domain.NaturalClass, len(dst.NaturalClasses))
	for _, nc := range dst.NaturalClasses {
		classes[strings.ToLower(nc.Abbreviation)] = nc
	}
	matched := make(map[*domain.NaturalClass]bool)
	for _, sc := range src.NaturalClasses {
		members := make([]*domain.Phoneme, len(sc.Phonemes))
		for i, p := range sc.Phonemes {
			members[i] = translate[p]
		}
		if dc, ok := classes[strings.ToLower(sc.Abbreviation)]; ok {
			if dc.Name != sc.Name || dc.Features != sc.Features || !slices.Equal(dc.Phonemes, members) {
				dc.Name = sc.Name
				dc.Features = sc.Features
				dc.Phonemes = members
				st.Updated++
			}
			matched[dc] = true
			continue
		}
		sc.Phonemes = members
		dst.NaturalClasses = append(dst.NaturalClasses, sc)
		matched[sc] = true
		st.Added++
	}
	for _, nc := range dst.NaturalClasses {
		if !matched[nc] {
			st.Kept++
		}
	}

	for _, sb := range src.Boundaries {
		if db, ok := dst.BoundaryBySymbol(sb.Symbol); ok {
			if db.Name != sb.Name || db.Kind != sb.Kind {
				db.Name = sb.Name
				db.Kind = sb.Kind
				st.Updated++
			}
			continue
		}
		dst.Boundaries = append(dst.Boundaries, sb)
		st.Added++
	}
	return st
}
