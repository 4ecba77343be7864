package entity

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Operator represents a comparison applied by a criterion.
type Operator int

const (
	Eq         Operator = iota // =
	Ne                         // <>
	Gt                         // >
	Gte                        // >=
	Lt                         // <
	Lte                        // <=
	Contains                   // LIKE %v%
	StartsWith                 // LIKE v%
	EndsWith                   // LIKE %v
	In                         // IN (...)
	NotIn                      // NOT IN (...)
	MemberOf                   // :p MEMBER OF field
)

var opNames = map[Operator]string{
	Eq:         "eq",
	Ne:         "neq",
	Gt:         "gt",
	Gte:        "gte",
	Lt:         "lt",
	Lte:        "lte",
	Contains:   "contains",
	StartsWith: "startsWith",
	EndsWith:   "endsWith",
	In:         "in",
	NotIn:      "nin",
	MemberOf:   "memberOf",
}

var opSymbols = map[Operator]string{
	Eq:  "=",
	Ne:  "<>",
	Gt:  ">",
	Gte: ">=",
	Lt:  "<",
	Lte: "<=",
}

// aliases accepted by ParseOperator in addition to names and symbols
var opAliases = map[string]Operator{
	"like":        Contains, // legacy
	"!=":          Ne,
	"ne":          Ne,
	"starts_with": StartsWith,
	"ends_with":   EndsWith,
	"not_in":      NotIn,
	"member_of":   MemberOf,
}

// ParseOperator looks up an operator by name, symbol, or alias.
func ParseOperator(name string) (op Operator, err error) {

	for op, opName := range opNames {
		if strings.EqualFold(opName, name) {
			return op, nil
		}
	}
	for op, symbol := range opSymbols {
		if symbol == name {
			return op, nil
		}
	}

	op, ok := opAliases[strings.ToLower(name)]
	if !ok {
		err = errors.Errorf("unknown compare operator: %q", name)
	}
	return
}

// String returns the canonical name of the operator.
func (op Operator) String() string {
	name, ok := opNames[op]
	if !ok {
		return fmt.Sprintf("Operator(%d)", int(op))
	}
	return name
}

// Wrap transforms a raw value for the operator, adding LIKE wildcards where needed.
func (op Operator) Wrap(value any) any {
	switch op {
	case Contains:
		return fmt.Sprintf("%%%v%%", value)
	case StartsWith:
		return fmt.Sprintf("%v%%", value)
	case EndsWith:
		return fmt.Sprintf("%%%v", value)
	default:
		return value
	}
}

// Predicate represents an AND-combined comparison of a field against a bound parameter.
type Predicate struct {
	Op    Operator // Comparison
	Field string   // Db field reference, ie "a.age"
	Param string   // Bound parameter name, without the leading colon
}

// String renders the predicate in DQL-ish form, ie "a.age >= :p_age".
func (pd Predicate) String() string {

	param := ":" + pd.Param

	switch pd.Op {
	case Contains, StartsWith, EndsWith:
		return fmt.Sprintf("%s LIKE %s", pd.Field, param)
	case In:
		return fmt.Sprintf("%s IN(%s)", pd.Field, param)
	case NotIn:
		return fmt.Sprintf("%s NOT IN(%s)", pd.Field, param)
	case MemberOf:
		return fmt.Sprintf("%s MEMBER OF %s", param, pd.Field)
	}

	symbol, ok := opSymbols[pd.Op]
	if !ok {
		symbol = pd.Op.String()
	}
	return fmt.Sprintf("%s %s %s", pd.Field, symbol, param)
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection is lenient, anything other than desc sorts ascending.
func ParseDirection(dir string) Direction {
	if strings.EqualFold(strings.TrimSpace(dir), string(Desc)) {
		return Desc
	}
	return Asc
}

// Sort represents an order by clause, or a sort directive supplied with filters.
type Sort struct {
	Field     string    `mapstructure:"field" yaml:"field"`
	Direction Direction `mapstructure:"direction" yaml:"direction,omitempty"`
}

// String renders the clause, ie "a.name DESC".
func (srt Sort) String() string {
	return fmt.Sprintf("%s %s", srt.Field, ParseDirection(string(srt.Direction)))
}
