package attri

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrUnknownOp is returned for an operator outside the supported set.
	ErrUnknownOp = errors.New("unknown operator")

	// ErrIncomparable is returned when the operands cannot be compared with the operator.
	ErrIncomparable = errors.New("incomparable values")

	// ErrMissingAttr is returned when an item lacks an attribute named in a condition.
	ErrMissingAttr = errors.New("missing attribute")
)

// Op is a relational operator.
type Op string

// Supported operators.
const (
	Eq Op = "=="
	Ne Op = "!="
	Lt Op = "<"
	Le Op = "<="
	Gt Op = ">"
	Ge Op = ">="
)

// ops is ordered so that two-character operators are matched first.
var ops = []Op{Eq, Ne, Le, Ge, Lt, Gt}

// ParseOp validates an operator string.
func ParseOp(s string) (Op, error) {
	for _, op := range ops {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, s)
}

// Condition is one (attribute, operator, value) triple.
type Condition struct {
	Attr  string `json:"attr"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// String renders the condition in the form accepted by ParseCondition.
func (c Condition) String() string {
	if s, ok := c.Value.(string); ok {
		return fmt.Sprintf("%s%s%q", c.Attr, c.Op, s)
	}
	return fmt.Sprintf("%s%s%v", c.Attr, c.Op, c.Value)
}

// ParseCondition parses expressions such as `score>0.5`, `label=="cat"`,
// `label==cat` or `reviewed!=true`. Unquoted values are read as numbers or
// booleans when they parse as such, and as strings otherwise.
func ParseCondition(expr string) (Condition, error) {
	for i := 0; i < len(expr); i++ {
		for _, op := range ops {
			if !strings.HasPrefix(expr[i:], string(op)) {
				continue
			}
			attr := strings.TrimSpace(expr[:i])
			if attr == "" {
				return Condition{}, fmt.Errorf("condition %q: missing attribute name", expr)
			}
			return Condition{
				Attr:  attr,
				Op:    op,
				Value: ParseValue(strings.TrimSpace(expr[i+len(op):])),
			}, nil
		}
	}
	return Condition{}, fmt.Errorf("%w in condition %q", ErrUnknownOp, expr)
}

// ParseValue reads a literal as used on the right side of a condition:
// quoted strings, null, true, false, numbers, and bare strings otherwise.
func ParseValue(s string) any {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	switch s {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Eval applies the condition to a record.
func (c Condition) Eval(rec Struct) (bool, error) {
	v, ok := rec[c.Attr]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrMissingAttr, c.Attr)
	}
	return Compare(v, c.Op, c.Value)
}

type kind int

const (
	kindNil kind = iota
	kindNumber
	kindString
	kindBool
	kindOther
)

// classify maps a dynamic value to its comparison kind, converting numbers
// to float64.
func classify(v any) (kind, float64) {
	switch x := v.(type) {
	case nil:
		return kindNil, 0
	case string:
		return kindString, 0
	case bool:
		return kindBool, 0
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return kindOther, 0
		}
		return kindNumber, f
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindNumber, float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return kindNumber, float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return kindNumber, rv.Float()
	}
	return kindOther, 0
}

// Compare evaluates `a op b`. Numbers compare numerically and strings
// lexically. Booleans and nil support only equality; equality between
// different kinds is false. Any other combination is ErrIncomparable.
func Compare(a any, op Op, b any) (bool, error) {
	ka, fa := classify(a)
	kb, fb := classify(b)

	if ka == kindOther || kb == kindOther {
		return false, fmt.Errorf("%w: %T %s %T", ErrIncomparable, a, op, b)
	}

	if ka != kb {
		switch op {
		case Eq:
			return false, nil
		case Ne:
			return true, nil
		}
		if _, err := ParseOp(string(op)); err != nil {
			return false, err
		}
		return false, fmt.Errorf("%w: %T %s %T", ErrIncomparable, a, op, b)
	}

	switch ka {
	case kindNumber:
		return compareOrdered(fa, op, fb)
	case kindString:
		return compareOrdered(a.(string), op, b.(string))
	case kindBool:
		return compareEquality(a.(bool) == b.(bool), op, a, b)
	default:
		return compareEquality(true, op, a, b)
	}
}

func compareOrdered[T float64 | string](a T, op Op, b T) (bool, error) {
	switch op {
	case Eq:
		return a == b, nil
	case Ne:
		return a != b, nil
	case Lt:
		return a < b, nil
	case Le:
		return a <= b, nil
	case Gt:
		return a > b, nil
	case Ge:
		return a >= b, nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

func compareEquality(equal bool, op Op, a, b any) (bool, error) {
	switch op {
	case Eq:
		return equal, nil
	case Ne:
		return !equal, nil
	}
	if _, err := ParseOp(string(op)); err != nil {
		return false, err
	}
	return false, fmt.Errorf("%w: %T %s %T", ErrIncomparable, a, op, b)
}
