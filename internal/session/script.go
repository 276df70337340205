package session

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/log"
)

// Block is one rule's worth of steps in an edit script.
//
//	- rule: nasal assimilation
//	  create: regular
//	  steps:
//	    - ins natural-class N
//	    - cell SC
//	    - ins phoneme m
//	    - env / _ p
type Block struct {
	Rule string `yaml:"rule"`
	// Create names the kind of a rule to add first. Empty edits an
	// existing rule.
	Create domain.RuleKind `yaml:"create,omitempty"`
	// RHS selects a right-hand side, 1-based.
	RHS   int      `yaml:"rhs,omitempty"`
	Steps []string `yaml:"steps"`
}

// Script is a list of blocks run in order.
type Script []Block

// StepError reports the step a script stopped at.
type StepError struct {
	Rule string
	Step int
	Line string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("rule %q step %d (%s): %v", e.Rule, e.Step, e.Line, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ParseScript decodes a YAML edit script.
func ParseScript(r io.Reader) (Script, error) {
	var sc Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	for i, b := range sc {
		if b.Rule == "" {
			return nil, fmt.Errorf("block %d has no rule", i+1)
		}
	}
	return sc, nil
}

// RunScript executes sc against s and returns the outcome of every step. It
// stops at the first failing step.
func (s *Session) RunScript(ctx context.Context, sc Script) ([]Outcome, error) {
	var out []Outcome
	for _, b := range sc {
		if err := s.enter(b); err != nil {
			return out, &StepError{Rule: b.Rule, Line: "select", Err: err}
		}
		for i, line := range b.Steps {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			o, err := s.Exec(ctx, line)
			if err != nil {
				return out, &StepError{Rule: b.Rule, Step: i + 1, Line: line, Err: err}
			}
			for _, d := range o.Diagnostics.Warnings() {
				log.Warn(log.CatUI, "environment", "rule", b.Rule, "step", i+1, "diagnostic", d.String())
			}
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Session) enter(b Block) error {
	if b.Create != "" {
		if _, err := s.NewRule(b.Create, b.Rule); err != nil {
			return err
		}
	} else if err := s.Select(b.Rule); err != nil {
		return err
	}
	if b.RHS > 1 {
		return s.SelectRHS(b.RHS - 1)
	}
	return nil
}
