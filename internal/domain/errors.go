package domain

import "fmt"

// RuleNotFoundError is returned when a rule lookup fails.
type RuleNotFoundError struct {
	Key string
}

func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("rule not found: %s", e.Key)
}
