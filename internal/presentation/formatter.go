package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatRules formats a list of rules as JSON
func (f *Formatter) FormatRules(rules []RuleDTO) error {
	if rules == nil {
		rules = []RuleDTO{}
	}
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rules)
}

// FormatRuleLines writes one aligned line per rule: name, kind and the
// first formula. Further right-hand sides follow on indented lines.
func (f *Formatter) FormatRuleLines(rules []RuleDTO) error {
	width := 0
	for _, r := range rules {
		width = max(width, len(r.Name))
	}
	for _, r := range rules {
		first := ""
		if len(r.Formulas) > 0 {
			first = r.Formulas[0]
		}
		line := fmt.Sprintf("%-*s  %-13s  %s", width, r.Name, r.Kind, first)
		if _, err := fmt.Fprintln(f.writer, strings.TrimRight(line, " ")); err != nil {
			return err
		}
		for _, more := range r.Formulas[min(1, len(r.Formulas)):] {
			if _, err := fmt.Fprintf(f.writer, "%*s  %s\n", width+15, "", more); err != nil {
				return err
			}
		}
	}
	return nil
}
