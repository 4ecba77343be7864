package duck

import (
	"fmt"
	"strings"

	"github.com/goccy/go-reflect"
	"github.com/pkg/errors"

	nt "sieve/entity"
)

// Query is a select from a single table under construction.
type Query struct {
	Table  string
	Alias  string
	Limit  int
	Offset int

	predicates []nt.Predicate
	params     map[string]any
	orders     []nt.Sort
}

// NewQuery creates a Query selecting from table as alias.
func NewQuery(table, alias string) *Query {
	return &Query{
		Table:  table,
		Alias:  alias,
		params: map[string]any{},
	}
}

// RootAliases returns the table alias.
func (qry *Query) RootAliases() []string {
	return []string{qry.Alias}
}

// AndWhere adds a predicate.
func (qry *Query) AndWhere(predicate nt.Predicate) {
	qry.predicates = append(qry.predicates, predicate)
}

// SetParameter binds a value, replacing any previous binding.
func (qry *Query) SetParameter(name string, value any) {
	qry.params[name] = value
}

// OrderBy replaces order by clauses.
func (qry *Query) OrderBy(field string, dir nt.Direction) {
	qry.orders = []nt.Sort{{Field: field, Direction: dir}}
}

// AddOrderBy appends an order by clause.
func (qry *Query) AddOrderBy(field string, dir nt.Direction) {
	qry.orders = append(qry.orders, nt.Sort{Field: field, Direction: dir})
}

// OrderClauses returns order by clauses added so far.
func (qry *Query) OrderClauses() []nt.Sort {
	return append([]nt.Sort{}, qry.orders...)
}

// Predicates returns predicates added so far.
func (qry *Query) Predicates() []nt.Predicate {
	return append([]nt.Predicate{}, qry.predicates...)
}

// Parameter returns a bound value.
func (qry *Query) Parameter(name string) (value any, ok bool) {
	value, ok = qry.params[name]
	return
}

// SQL renders a select with positional args.
func (qry *Query) SQL() (query string, args []any, err error) {

	where, args, err := qry.buildWhereClause()
	if err != nil {
		return
	}

	query = fmt.Sprintf("SELECT * FROM %s AS %s%s%s", qry.Table, qry.Alias, where, qry.buildOrderClause())

	if qry.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", qry.Limit)
	}
	if qry.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", qry.Offset)
	}
	return
}

// CountSQL renders a count of matching rows with positional args.
func (qry *Query) CountSQL() (query string, args []any, err error) {

	where, args, err := qry.buildWhereClause()
	if err != nil {
		return
	}

	query = fmt.Sprintf("SELECT COUNT(*) FROM %s AS %s%s", qry.Table, qry.Alias, where)
	return
}

// unexported

// buildWhereClause ANDs predicates together, leading space included
func (qry *Query) buildWhereClause() (where string, args []any, err error) {

	if len(qry.predicates) == 0 {
		return
	}

	clauses := make([]string, 0, len(qry.predicates))
	for _, pd := range qry.predicates {
		value, ok := qry.params[pd.Param]
		if !ok {
			err = errors.Errorf("parameter %q not bound for predicate: %s", pd.Param, pd)
			return
		}

		var clause string
		var vals []any
		clause, vals, err = buildFilterExpr(pd, value)
		if err != nil {
			return
		}

		clauses = append(clauses, clause)
		args = append(args, vals...)
	}

	where = " WHERE " + strings.Join(clauses, " AND ")
	return
}

func (qry *Query) buildOrderClause() string {

	if len(qry.orders) == 0 {
		return ""
	}

	clauses := make([]string, len(qry.orders))
	for i, srt := range qry.orders {
		clauses[i] = srt.String()
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

// buildFilterExpr renders a predicate for duckdb
func buildFilterExpr(pd nt.Predicate, value any) (clause string, args []any, err error) {

	switch pd.Op {
	case nt.Eq:
		return pd.Field + " = ?", []any{value}, nil
	case nt.Ne:
		return pd.Field + " != ?", []any{value}, nil
	case nt.Gt:
		return pd.Field + " > ?", []any{value}, nil
	case nt.Gte:
		return pd.Field + " >= ?", []any{value}, nil
	case nt.Lt:
		return pd.Field + " < ?", []any{value}, nil
	case nt.Lte:
		return pd.Field + " <= ?", []any{value}, nil
	case nt.Contains, nt.StartsWith, nt.EndsWith:
		return pd.Field + " LIKE ?", []any{value}, nil
	case nt.In, nt.NotIn:
		args = expand(value)
		if len(args) == 0 {
			// nothing is in an empty list
			if pd.Op == nt.In {
				return "FALSE", nil, nil
			}
			return "TRUE", nil, nil
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
		if pd.Op == nt.In {
			return fmt.Sprintf("%s IN (%s)", pd.Field, marks), args, nil
		}
		return fmt.Sprintf("%s NOT IN (%s)", pd.Field, marks), args, nil
	case nt.MemberOf:
		return fmt.Sprintf("list_contains(%s, ?)", pd.Field), []any{value}, nil
	}

	err = errors.Errorf("unsupported operator: %s", pd.Op)
	return
}

// expand flattens a slice or array value into args, other values stand alone
func expand(value any) []any {

	rv := reflect.ValueNoEscapeOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{value}
	}

	args := make([]any, rv.Len())
	for i := range args {
		args[i] = rv.Index(i).Interface()
	}
	return args
}
