package flowchart

import (
	"errors"
	"fmt"
	"strings"
)

// LintError describes a structural problem in a hierarchy that does not stop
// it from being parsed. Warnings are advisory and never fail validation.
type LintError struct {
	Step    int
	Message string
	Warning bool
}

func (e LintError) Error() string {
	if e.Step != 0 {
		return fmt.Sprintf("step %d: %s", e.Step, e.Message)
	}
	return e.Message
}

// Validate checks a parsed hierarchy for structural problems.
// Returns all discovered errors (not just the first).
func Validate(h *Hierarchy) []LintError {
	var errs []LintError

	// A candidate listed twice in one expression can never change the result.
	for _, id := range h.IDs() {
		seen := map[Ref]bool{}
		for _, c := range h.Steps[id].Expr.Candidates() {
			if seen[c] {
				errs = append(errs, LintError{Step: id, Message: fmt.Sprintf("predecessor %s listed more than once", c)})
			}
			seen[c] = true
		}
	}

	// A declared data token nothing reads is worth mentioning; a hierarchy
	// is free to use only part of the vocabulary.
	referenced := map[string]bool{}
	for _, s := range h.Steps {
		for _, c := range s.Expr.Candidates() {
			if c.IsData() {
				referenced[c.Data] = true
			}
		}
	}
	for _, tok := range h.Sources {
		if !referenced[tok] {
			errs = append(errs, LintError{Message: fmt.Sprintf("data source %q is never referenced", tok), Warning: true})
		}
	}

	// With every data source present, every step must be reachable.
	g, err := Resolve(h, h.IDs(), h.Sources)
	if err != nil {
		var cycle CycleError
		if errors.As(err, &cycle) {
			return append(errs, LintError{Step: cycle.Path[0], Message: cycle.Error()})
		}
		return append(errs, LintError{Message: err.Error()})
	}
	for _, id := range g.Gaps(h) {
		errs = append(errs, LintError{Step: id, Message: "step can never be sourced, even with every data source present"})
	}

	return errs
}

// ValidateErr calls Validate and returns nil if there are no errors, or a
// combined error message listing all lint errors. Warnings are left out.
func ValidateErr(h *Hierarchy) error {
	var msgs []string
	for _, e := range Validate(h) {
		if !e.Warning {
			msgs = append(msgs, e.Error())
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("hierarchy validation failed:\n  %s", strings.Join(msgs, "\n  "))
}
