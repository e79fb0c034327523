// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"strings"

	"github.com/dotandev/tranche/internal/errors"
)

// DiagnosticPattern maps substrings of a host diagnostic to an explanation.
type DiagnosticPattern struct {
	Name        string
	Keywords    []string
	Cause       error
	Explanation string
}

// SimulationError is a failed simulation. Diagnostic is the text reported by
// the network, untouched. Cause and Explanation are set only when a known
// pattern matched.
type SimulationError struct {
	Diagnostic  string
	Rule        string
	Explanation string
	Cause       error
}

func (e *SimulationError) Error() string {
	if e.Explanation != "" {
		return fmt.Sprintf("%s: %s", errors.ErrSimulationFailed, e.Explanation)
	}
	return fmt.Sprintf("%s: %s", errors.ErrSimulationFailed, e.Diagnostic)
}

func (e *SimulationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{errors.ErrSimulationFailed, e.Cause}
	}
	return []error{errors.ErrSimulationFailed}
}

// Classifier turns simulation diagnostics into errors.
type Classifier struct {
	rules []DiagnosticPattern
}

func NewClassifier() *Classifier {
	c := &Classifier{}
	c.loadDefaultRules()
	return c
}

func (c *Classifier) loadDefaultRules() {
	// A trap inside the contract almost always means initialize() never ran.
	c.rules = append(c.rules, DiagnosticPattern{
		Name:     "uninitialized_contract",
		Keywords: []string{"UnreachableCodeReached", "uninitialized contract state"},
		Cause:    errors.ErrContractUninitialized,
		Explanation: "Contract Not Initialized: the tranche contract must be initialized by its " +
			"administrator (pool, token and admin addresses) before it can be used.",
	})

	c.rules = append(c.rules, DiagnosticPattern{
		Name:     "action_not_allowed",
		Keywords: []string{"InvalidAction", "disallowed action"},
		Cause:    errors.ErrActionNotAllowed,
		Explanation: "Contract Error: this action is not allowed. The contract may be paused " +
			"or missing required configuration.",
	})
}

// AddRule appends a pattern. Earlier rules win.
func (c *Classifier) AddRule(p DiagnosticPattern) {
	c.rules = append(c.rules, p)
}

// Classify returns the error for a failed simulation. It never returns nil.
func (c *Classifier) Classify(diagnostic string) error {
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(diagnostic, kw) {
				return &SimulationError{
					Diagnostic:  diagnostic,
					Rule:        rule.Name,
					Explanation: rule.Explanation,
					Cause:       rule.Cause,
				}
			}
		}
	}
	return &SimulationError{Diagnostic: diagnostic}
}

var defaultClassifier = NewClassifier()

// Classify uses the default rule set.
func Classify(diagnostic string) error {
	return defaultClassifier.Classify(diagnostic)
}
