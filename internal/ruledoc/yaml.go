package ruledoc

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/envstring"
)

// Marshal encodes r as a YAML document.
func Marshal(r domain.Rule, lookup envstring.Lookup) ([]byte, error) {
	doc, err := Encode(r, lookup)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// Unmarshal decodes one YAML rule document into data.
func Unmarshal(data *domain.PhonData, in []byte) (domain.Rule, error) {
	var doc Doc
	if err := yaml.Unmarshal(in, &doc); err != nil {
		return nil, fmt.Errorf("parsing rule document: %w", err)
	}
	return Decode(data, doc)
}

// WriteAll writes rules to w as a stream of YAML documents.
func WriteAll(w io.Writer, rules []domain.Rule, lookup envstring.Lookup) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, r := range rules {
		doc, err := Encode(r, lookup)
		if err != nil {
			return err
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("writing rule %s: %w", r.Name(), err)
		}
	}
	return enc.Close()
}

// ReadAll reads a stream of YAML rule documents. It stops at the first
// document that fails to parse; rules decoded before it stay in data.
func ReadAll(data *domain.PhonData, r io.Reader) ([]domain.Rule, error) {
	dec := yaml.NewDecoder(r)
	var rules []domain.Rule
	for i := 1; ; i++ {
		var doc Doc
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return rules, nil
		}
		if err != nil {
			return rules, fmt.Errorf("document %d: %w", i, err)
		}
		rule, err := Decode(data, doc)
		if err != nil {
			return rules, fmt.Errorf("document %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
}
