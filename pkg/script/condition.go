package script

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Condition compares a board value against a constant, e.g. "count < 3".
// Missing values read as zero.
type Condition struct {
	Key   string
	Op    string
	Value float64
}

// Longer operators first so "<=" is not read as "<".
var operators = []string{"<=", ">=", "==", "!=", "<", ">"}

// ParseCondition parses "<key> <op> <number>".
func ParseCondition(s string) (Condition, error) {
	for _, op := range operators {
		idx := strings.Index(s, op)
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(s[:idx])
		raw := strings.TrimSpace(s[idx+len(op):])
		if !isIdentifier(key) {
			return Condition{}, fmt.Errorf("%w: %q: bad key %q", ErrInvalidCondition, s, key)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Condition{}, fmt.Errorf("%w: %q: bad number %q", ErrInvalidCondition, s, raw)
		}
		return Condition{Key: key, Op: op, Value: v}, nil
	}
	return Condition{}, fmt.Errorf("%w: %q: no operator", ErrInvalidCondition, s)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '.' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// Eval evaluates the condition against the board.
func (c Condition) Eval(b *Board) bool {
	v := b.Values[c.Key]
	switch c.Op {
	case "<":
		return v < c.Value
	case "<=":
		return v <= c.Value
	case ">":
		return v > c.Value
	case ">=":
		return v >= c.Value
	case "==":
		return v == c.Value
	case "!=":
		return v != c.Value
	default:
		return false
	}
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Key, c.Op, strconv.FormatFloat(c.Value, 'f', -1, 64))
}
