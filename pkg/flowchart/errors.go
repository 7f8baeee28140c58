package flowchart

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatError reports a malformed hierarchy line. Parsing stops at the first
// one; no partial hierarchy is returned.
type FormatError struct {
	Line    int    // 1-based line number, 0 when not tied to one line
	Text    string // offending line, trimmed
	Message string
}

func (e FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Text)
	}
	return e.Message
}

// UnknownStepError reports a step id that is not declared in the hierarchy.
type UnknownStepError struct {
	Step int
}

func (e UnknownStepError) Error() string {
	return fmt.Sprintf("step %d is not declared in the hierarchy", e.Step)
}

// CycleError reports a dependency cycle found while resolving. Path lists the
// step ids on the cycle, starting and ending with the same id.
type CycleError struct {
	Path []int
}

func (e CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = strconv.Itoa(id)
	}
	return "dependency cycle: " + strings.Join(parts, " -> ")
}
