package testutil

import "github.com/zjrosen/phonrule/internal/domain"

// Inventory returns the standard test inventory: five vowels, nine plain
// consonants plus the multi-character "ts" and "tʃ", and the natural classes
// V (vowels), C (consonants), N (nasals) and the feature class "voi".
func Inventory() *domain.PhonData {
	d := domain.NewPhonData()
	byName := map[string]*domain.Phoneme{}
	add := func(syms ...string) []*domain.Phoneme {
		out := make([]*domain.Phoneme, len(syms))
		for i, s := range syms {
			p := domain.NewPhoneme(s)
			byName[s] = p
			d.Phonemes = append(d.Phonemes, p)
			out[i] = p
		}
		return out
	}
	vowels := add("a", "e", "i", "o", "u")
	consonants := add("p", "t", "k", "b", "d", "g", "s", "m", "n", "ts", "tʃ")

	voiced := &domain.NaturalClass{
		ID:           domain.NewID(),
		Name:         "Voiced",
		Abbreviation: "voi",
		Features:     true,
		Phonemes:     append(append([]*domain.Phoneme(nil), vowels...), byName["b"], byName["d"], byName["g"], byName["m"], byName["n"]),
	}
	d.NaturalClasses = []*domain.NaturalClass{
		domain.NewNaturalClass("Vowels", "V", vowels...),
		domain.NewNaturalClass("Consonants", "C", consonants...),
		domain.NewNaturalClass("Nasals", "N", byName["m"], byName["n"]),
		voiced,
	}
	return d
}
