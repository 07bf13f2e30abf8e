package sina

import (
	"errors"
	"fmt"
	"strings"
)

// Assignment is one `var name="value";` statement.
type Assignment struct {
	Name  string
	Value string
}

// ParseError describes a line that is not a valid assignment.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %.60q", e.Line, e.Reason, e.Text)
}

// ParseAssignments reads text line by line. Blank lines are skipped, valid
// lines are returned in order, and every malformed line contributes a
// *ParseError to the joined error.
func ParseAssignments(text string) ([]Assignment, error) {
	var (
		out  []Assignment
		errs []error
	)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		a, reason := parseLine(line)
		if reason != "" {
			errs = append(errs, &ParseError{Line: i + 1, Text: line, Reason: reason})
			continue
		}
		out = append(out, a)
	}
	return out, errors.Join(errs...)
}

func parseLine(line string) (Assignment, string) {
	rest, ok := strings.CutPrefix(line, "var ")
	if !ok {
		return Assignment{}, "missing var keyword"
	}
	name, rest, ok := strings.Cut(rest, "=")
	if !ok {
		return Assignment{}, "missing ="
	}
	name = strings.TrimSpace(name)
	if !isIdentifier(name) {
		return Assignment{}, "invalid identifier"
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, `"`) {
		return Assignment{}, "value is not quoted"
	}
	value, ok := strings.CutSuffix(rest[1:], `";`)
	if !ok {
		return Assignment{}, "unterminated value"
	}
	if strings.Contains(value, `"`) {
		return Assignment{}, "stray quote in value"
	}
	return Assignment{Name: name, Value: value}, ""
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
