package flowchart

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Parser turns hierarchy-file text into a Hierarchy. Sources is the
// vocabulary of external-data tokens a predecessor expression may name.
type Parser struct {
	Sources Vocabulary
}

// NewParser returns a Parser accepting the given data tokens. An empty
// vocabulary falls back to DefaultVocabulary.
func NewParser(sources Vocabulary) *Parser {
	if len(sources) == 0 {
		sources = DefaultVocabulary
	}
	return &Parser{Sources: sources}
}

// Parse reads a hierarchy file from r. Each significant line has the form
//
//	<predecessor-expression> <id>:<name>
//
// where the expression is a list of step ids and data tokens joined by ','
// (pick one) and '+' (take all). Lines starting with '#' are comments.
func (p *Parser) Parse(r io.Reader) (*Hierarchy, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read hierarchy: %w", err)
	}
	return p.ParseLines(lines)
}

// ParseString parses a hierarchy held in memory.
func (p *Parser) ParseString(src string) (*Hierarchy, error) {
	return p.Parse(strings.NewReader(src))
}

// ParseLines parses an already split hierarchy file.
func (p *Parser) ParseLines(lines []string) (*Hierarchy, error) {
	h := &Hierarchy{
		Steps:   make(map[int]*Step),
		Sources: p.Sources,
	}
	lineOf := make(map[int]int)

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		step, err := p.parseLine(line)
		if err != nil {
			return nil, FormatError{Line: lineNo, Text: line, Message: err.Error()}
		}
		if prev, dup := lineOf[step.ID]; dup {
			return nil, FormatError{
				Line:    lineNo,
				Text:    line,
				Message: fmt.Sprintf("step %d already defined on line %d", step.ID, prev),
			}
		}
		h.Steps[step.ID] = step
		h.Order = append(h.Order, step.ID)
		lineOf[step.ID] = lineNo
	}

	// Forward references are legal, so step references are checked only once
	// every node definition has been seen.
	for _, id := range h.Order {
		step := h.Steps[id]
		for _, c := range step.Expr.Candidates() {
			if c.IsData() {
				continue
			}
			msg := ""
			switch {
			case c.Step == id:
				msg = fmt.Sprintf("step %d lists itself as a predecessor", id)
			case h.Steps[c.Step] == nil:
				msg = fmt.Sprintf("predecessor %d is never defined", c.Step)
			}
			if msg != "" {
				return nil, FormatError{
					Line:    lineOf[id],
					Text:    strings.TrimSpace(lines[lineOf[id]-1]),
					Message: msg,
				}
			}
		}
	}

	slog.Debug("parsed hierarchy", "steps", len(h.Steps), "sources", []string(p.Sources))
	return h, nil
}

// parseLine parses one significant line. A line holding only the node field
// declares a root step with no predecessors.
func (p *Parser) parseLine(line string) (*Step, error) {
	fields := strings.Fields(line)
	var exprField, nodeField string
	switch len(fields) {
	case 1:
		nodeField = fields[0]
	case 2:
		exprField, nodeField = fields[0], fields[1]
	default:
		return nil, fmt.Errorf("expected '<predecessors> <id>:<name>', found %d fields", len(fields))
	}

	idText, name, ok := strings.Cut(nodeField, ":")
	if !ok {
		return nil, fmt.Errorf("node field %q is missing ':'", nodeField)
	}
	id, err := parseStepID(idText)
	if err != nil {
		return nil, fmt.Errorf("node field %q: %w", nodeField, err)
	}
	if name == "" {
		return nil, fmt.Errorf("step %d has an empty name", id)
	}

	step := &Step{ID: id, Name: name}
	if exprField != "" {
		expr, err := p.parseExpression(exprField)
		if err != nil {
			return nil, err
		}
		step.Expr = expr
	}
	return step, nil
}

// token is a predecessor candidate together with the connector that preceded
// it; the first token of an expression has connector 0.
type token struct {
	ref       Ref
	connector byte
}

// parseExpression tokenizes and groups a predecessor expression. '+' splits
// the expression into clauses and ',' binds tighter: a clause with several
// ','-joined members is an Exclusive group, and adjacent single-member
// clauses merge into one Inclusive group. So "1,2+3+4" is one choice between
// 1 and 2 plus both 3 and 4.
//
// Mixing the two connectors on one line, as in "1+2,3", is accepted on
// purpose and never a FormatError; only an empty member such as "1,+2" is.
func (p *Parser) parseExpression(expr string) (Expression, error) {
	tokens, err := p.tokenize(expr)
	if err != nil {
		return nil, err
	}

	var clauses [][]Ref
	for _, t := range tokens {
		if t.connector == ',' {
			last := len(clauses) - 1
			clauses[last] = append(clauses[last], t.ref)
			continue
		}
		clauses = append(clauses, []Ref{t.ref})
	}

	var groups Expression
	var run []Ref
	flush := func() {
		if len(run) > 0 {
			groups = append(groups, Group{Kind: Inclusive, Members: run})
			run = nil
		}
	}
	for _, c := range clauses {
		if len(c) == 1 {
			run = append(run, c[0])
			continue
		}
		flush()
		groups = append(groups, Group{Kind: Exclusive, Members: c})
	}
	flush()
	return groups, nil
}

func (p *Parser) tokenize(expr string) ([]token, error) {
	var (
		tokens    []token
		connector byte
		start     int
	)
	emit := func(end int) error {
		text := expr[start:end]
		if text == "" {
			return fmt.Errorf("empty predecessor at offset %d", start)
		}
		ref, err := p.classify(text)
		if err != nil {
			return err
		}
		tokens = append(tokens, token{ref: ref, connector: connector})
		return nil
	}

	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		switch {
		case ch == ',' || ch == '+':
			if err := emit(i); err != nil {
				return nil, err
			}
			connector = ch
			start = i + 1
		case !isTokenChar(ch):
			return nil, fmt.Errorf("unknown connector %q", ch)
		}
	}
	if err := emit(len(expr)); err != nil {
		return nil, err
	}
	return tokens, nil
}

// classify decides whether text names a data token or a step.
func (p *Parser) classify(text string) (Ref, error) {
	if p.Sources.Contains(text) {
		return DataRef(text), nil
	}
	if isDigits(text) {
		id, err := parseStepID(text)
		if err != nil {
			return Ref{}, err
		}
		return StepRef(id), nil
	}
	return Ref{}, fmt.Errorf("undeclared data token %q", text)
}

func parseStepID(text string) (int, error) {
	if !isDigits(text) {
		return 0, fmt.Errorf("step id %q is not a positive integer", text)
	}
	id, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("step id %q: %w", text, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("step ids start at 1, got %d", id)
	}
	return id, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidToken reports whether s is non-empty and made only of characters a
// predecessor expression can carry in a single member.
func ValidToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' ||
		ch >= 'A' && ch <= 'Z' ||
		ch >= '0' && ch <= '9' ||
		ch == '_' || ch == '-' || ch == '.'
}
