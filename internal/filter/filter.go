// Package filter evaluates respondent-level filter conditions and nested AND/OR groups.
package filter

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

// Operator is a comparison applied by a Condition.
type Operator string

const (
	Equals      Operator = "equals"
	NotEquals   Operator = "not_equals"
	Contains    Operator = "contains"
	NotContains Operator = "not_contains"
	GreaterThan Operator = "greater_than"
	LessThan    Operator = "less_than"
	InRange     Operator = "in_range"
	IsEmpty     Operator = "is_empty"
	IsNotEmpty  Operator = "is_not_empty"
	StartsWith  Operator = "starts_with"
	EndsWith    Operator = "ends_with"
)

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	switch op {
	case Equals, NotEquals, Contains, NotContains, GreaterThan, LessThan, InRange,
		IsEmpty, IsNotEmpty, StartsWith, EndsWith:
		return true
	default:
		return false
	}
}

// Condition compares one column against a value.
type Condition struct {
	Column      string   `json:"column" yaml:"column" validate:"required"`
	Operator    Operator `json:"operator" yaml:"operator" validate:"required,oneof=equals not_equals contains not_contains greater_than less_than in_range is_empty is_not_empty starts_with ends_with"`
	Value       string   `json:"value,omitempty" yaml:"value,omitempty"`
	SecondValue string   `json:"secondValue,omitempty" yaml:"second_value,omitempty"`
	Negate      bool     `json:"negate,omitempty" yaml:"negate,omitempty"`
}

// Row is the read access a filter needs.
type Row interface {
	Value(column string) string
}

var _ Row = dataset.Row{}

// EvaluateCondition applies c to a row. String comparisons ignore case. The numeric operators
// evaluate false when either side is not a number, whether or not the condition is negated.
func EvaluateCondition(row Row, c Condition) bool {
	v := strings.TrimSpace(row.Value(c.Column))
	lv := strings.ToLower(v)
	want := strings.ToLower(strings.TrimSpace(c.Value))

	var res bool
	switch c.Operator {
	case Equals:
		res = lv == want
	case NotEquals:
		res = lv != want
	case Contains:
		res = strings.Contains(lv, want)
	case NotContains:
		res = !strings.Contains(lv, want)
	case StartsWith:
		res = strings.HasPrefix(lv, want)
	case EndsWith:
		res = strings.HasSuffix(lv, want)
	case IsEmpty:
		res = isEmptyValue(lv)
	case IsNotEmpty:
		res = !isEmptyValue(lv)
	case GreaterThan, LessThan, InRange:
		x, ok := parseNumber(v)
		if !ok {
			return false
		}
		a, ok := parseNumber(c.Value)
		if !ok {
			return false
		}
		switch c.Operator {
		case GreaterThan:
			res = x > a
		case LessThan:
			res = x < a
		default:
			b, ok := parseNumber(c.SecondValue)
			if !ok {
				return false
			}
			res = x >= a && x <= b
		}
	default:
		return false
	}
	if c.Negate {
		return !res
	}
	return res
}

func isEmptyValue(lv string) bool {
	return lv == "" || lv == "null" || lv == "undefined"
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Apply returns the rows of ds that satisfy every simple condition and every nested group.
// ds is not modified.
func Apply(ds *dataset.Dataset, simple map[string]Condition, groups []Group) *dataset.Dataset {
	if len(simple) == 0 && len(groups) == 0 {
		return ds
	}
	keep := make([]int, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		if Match(ds.Row(i), simple, groups) {
			keep = append(keep, i)
		}
	}
	return ds.Subset(keep)
}

// Match reports whether a row passes the simple conditions and nested groups.
func Match(row Row, simple map[string]Condition, groups []Group) bool {
	for _, c := range simple {
		if !EvaluateCondition(row, c) {
			return false
		}
	}
	for _, g := range groups {
		if !EvaluateGroup(row, g) {
			return false
		}
	}
	return true
}
