// Package inventory loads phoneme inventories from YAML files and merges a
// reloaded file into the inventory rules already reference.
package inventory

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/log"
)

//go:embed default.yaml
var defaultInventory []byte

// File is the YAML form of an inventory.
type File struct {
	Name       string         `yaml:"name,omitempty"`
	Phonemes   []PhonemeEntry `yaml:"phonemes"`
	Classes    []ClassEntry   `yaml:"classes,omitempty"`
	Boundaries []BoundaryEntry `yaml:"boundaries,omitempty"`
}

// PhonemeEntry is one phoneme. Reps defaults to the name; the first
// representation is the display symbol.
type PhonemeEntry struct {
	Name string   `yaml:"name"`
	Reps []string `yaml:"reps,omitempty"`
}

// ClassEntry is a natural class listing its phonemes by name.
type ClassEntry struct {
	Name     string   `yaml:"name"`
	Abbr     string   `yaml:"abbr"`
	Features bool     `yaml:"features,omitempty"`
	Phonemes []string `yaml:"phonemes"`
}

// BoundaryEntry is a boundary marker; Kind is "word" or "morpheme".
type BoundaryEntry struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Symbol string `yaml:"symbol"`
}

// Default returns a fresh copy of the built-in inventory.
func Default() *domain.PhonData {
	d, err := Parse(defaultInventory)
	if err != nil {
		panic(fmt.Sprintf("built-in inventory: %v", err))
	}
	return d
}

// DefaultYAML returns the built-in inventory file, as a starting point for
// a custom one.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultInventory...)
}

// Load reads an inventory file. An empty path loads the built-in inventory.
func Load(path string) (*domain.PhonData, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}
	log.Info(log.CatInventory, "Loaded inventory", "path", path,
		"phonemes", len(d.Phonemes), "classes", len(d.NaturalClasses))
	return d, nil
}

// Parse decodes and checks an inventory file.
func Parse(data []byte) (*domain.PhonData, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}
	return f.Build()
}

// Build turns the file into phonological data with no rules.
func (f File) Build() (*domain.PhonData, error) {
	d := domain.NewPhonData()

	byName := make(map[string]*domain.Phoneme, len(f.Phonemes))
	spelled := make(map[string]string)
	for i, pe := range f.Phonemes {
		if pe.Name == "" {
			return nil, fmt.Errorf("phoneme %d: name is required", i)
		}
		if _, dup := byName[pe.Name]; dup {
			return nil, fmt.Errorf("phoneme %q defined twice", pe.Name)
		}
		p := domain.NewPhoneme(pe.Name, pe.Reps...)
		for _, rep := range p.Representations {
			if rep == "" || strings.ContainsAny(rep, " \t#+[]()_/") {
				return nil, fmt.Errorf("phoneme %q: invalid representation %q", pe.Name, rep)
			}
			if other, dup := spelled[rep]; dup {
				return nil, fmt.Errorf("representation %q used by %q and %q", rep, other, pe.Name)
			}
			spelled[rep] = pe.Name
		}
		byName[pe.Name] = p
		d.Phonemes = append(d.Phonemes, p)
	}

	abbrs := make(map[string]bool, len(f.Classes))
	for i, ce := range f.Classes {
		if ce.Abbr == "" {
			return nil, fmt.Errorf("class %d (%s): abbr is required", i, ce.Name)
		}
		key := strings.ToLower(ce.Abbr)
		if abbrs[key] {
			return nil, fmt.Errorf("class abbreviation %q defined twice", ce.Abbr)
		}
		abbrs[key] = true
		nc := domain.NewNaturalClass(ce.Name, ce.Abbr)
		nc.Features = ce.Features
		for _, name := range ce.Phonemes {
			p, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("class %s: unknown phoneme %q", ce.Abbr, name)
			}
			nc.Phonemes = append(nc.Phonemes, p)
		}
		d.NaturalClasses = append(d.NaturalClasses, nc)
	}

	if len(f.Boundaries) > 0 {
		d.Boundaries = nil
		for _, be := range f.Boundaries {
			kind, err := parseBoundaryKind(be.Kind)
			if err != nil {
				return nil, fmt.Errorf("boundary %q: %w", be.Symbol, err)
			}
			if be.Symbol == "" {
				return nil, fmt.Errorf("boundary %q: symbol is required", be.Name)
			}
			d.Boundaries = append(d.Boundaries, domain.NewBoundaryMarker(be.Name, kind, be.Symbol))
		}
	}
	return d, nil
}

func parseBoundaryKind(s string) (domain.BoundaryKind, error) {
	switch s {
	case "", "word":
		return domain.WordBoundary, nil
	case "morpheme":
		return domain.MorphemeBoundary, nil
	}
	return 0, fmt.Errorf("kind must be \"word\" or \"morpheme\", got %q", s)
}

// FileOf returns the YAML form of d's inventory.
func FileOf(d *domain.PhonData) File {
	var f File
	for _, p := range d.Phonemes {
		pe := PhonemeEntry{Name: p.Name}
		if len(p.Representations) != 1 || p.Representations[0] != p.Name {
			pe.Reps = append([]string(nil), p.Representations...)
		}
		f.Phonemes = append(f.Phonemes, pe)
	}
	for _, nc := range d.NaturalClasses {
		ce := ClassEntry{Name: nc.Name, Abbr: nc.Abbreviation, Features: nc.Features}
		for _, p := range nc.Phonemes {
			ce.Phonemes = append(ce.Phonemes, p.Name)
		}
		f.Classes = append(f.Classes, ce)
	}
	for _, b := range d.Boundaries {
		f.Boundaries = append(f.Boundaries, BoundaryEntry{Name: b.Name, Kind: b.Kind.String(), Symbol: b.Symbol})
	}
	return f
}
