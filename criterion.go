package sieve

import (
	"fmt"
	"strings"

	nt "sieve/entity"
)

// Criterion specifies a rule matching one entity/field pair to a contribution to a query.
type Criterion interface {
	// ID identifies the criterion in applied logs
	ID() string
	// Supports is true when the criterion handles exactly this entity and field
	Supports(entity, field string) bool
	// Validate reports a ConfigurationError when the criterion cannot be used
	Validate() (err error)
	// Apply adds the criterion's predicate(s) to the query
	Apply(qry Query, value any, alias string) (err error)
}

// Target identifies what a criterion handles.
type Target struct {
	// Entity is the type identifier the criterion applies to, required
	Entity string `yaml:"entity"`
	// Field is the filter name the criterion applies to, required
	Field string `yaml:"field"`
	// DbField is the column reference, alias + "." + Field when empty
	DbField string `yaml:"db_field,omitempty"`
}

// Supports is an exact match on entity and field.
func (tgt Target) Supports(entity, field string) bool {
	return tgt.Entity == entity && tgt.Field == field
}

func (tgt Target) validate(id string) (err error) {

	var missing []string
	if tgt.Entity == "" {
		missing = append(missing, "entity")
	}
	if tgt.Field == "" {
		missing = append(missing, "field")
	}

	if len(missing) > 0 {
		err = &ConfigurationError{
			Criterion: id,
			Reason:    "mandatory " + strings.Join(missing, " and ") + " not defined",
		}
	}
	return
}

// Column returns the db field reference, for use by custom funcs as well.
func (tgt Target) Column(alias string) string {
	if tgt.DbField != "" {
		return tgt.DbField
	}
	return alias + "." + tgt.Field
}

// param derives a parameter name from the field and operator.
// Alphanumerics pass through, underscore doubles, and anything else is hex escaped
// between underscores, so distinct fields never share a name.
func (tgt Target) param(op nt.Operator) string {

	var bld strings.Builder
	bld.WriteString("p_")
	for _, r := range tgt.Field {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			bld.WriteRune(r)
		case r == '_':
			bld.WriteString("__")
		default:
			fmt.Fprintf(&bld, "_%x_", r)
		}
	}
	bld.WriteString("_")
	bld.WriteString(op.String())

	return bld.String()
}

// Comparison is a criterion comparing the db field to the filter value.
type Comparison struct {
	Target
	Op nt.Operator
}

// NewComparison creates a comparison criterion.
// Misconfiguration is reported by Apply rather than here.
func NewComparison(entity, field string, op nt.Operator) *Comparison {
	return &Comparison{
		Target: Target{Entity: entity, Field: field},
		Op:     op,
	}
}

// WithDbField returns a copy comparing against an explicit column reference.
func (cmp Comparison) WithDbField(dbField string) *Comparison {
	cmp.DbField = dbField
	return &cmp
}

// ID returns entity.field:op.
func (cmp *Comparison) ID() string {
	return fmt.Sprintf("%s.%s:%s", cmp.Entity, cmp.Field, cmp.Op)
}

// Validate checks for entity and field.
func (cmp *Comparison) Validate() error {
	return cmp.validate(cmp.ID())
}

// Apply adds a single predicate and binds the wrapped value.
func (cmp *Comparison) Apply(qry Query, value any, alias string) (err error) {

	err = cmp.Validate()
	if err != nil {
		return
	}

	param := cmp.param(cmp.Op)
	qry.AndWhere(nt.Predicate{
		Op:    cmp.Op,
		Field: cmp.Column(alias),
		Param: param,
	})
	qry.SetParameter(param, cmp.Op.Wrap(value))
	return
}

// PredicateFunc contributes predicates and/or order by clauses to a query.
type PredicateFunc func(qry Query, value any, alias string) (err error)

// Custom is a criterion delegating entirely to a function.
type Custom struct {
	Target
	Name string
	Fn   PredicateFunc
}

// NewCustom creates a custom criterion.
func NewCustom(entity, field string, fn PredicateFunc) *Custom {
	return &Custom{
		Target: Target{Entity: entity, Field: field},
		Fn:     fn,
	}
}

// ID returns the name when set, entity.field:custom otherwise.
func (cst *Custom) ID() string {
	if cst.Name != "" {
		return cst.Name
	}
	return fmt.Sprintf("%s.%s:custom", cst.Entity, cst.Field)
}

// Validate checks for entity, field, and func.
func (cst *Custom) Validate() (err error) {

	err = cst.validate(cst.ID())
	if err != nil {
		return
	}
	if cst.Fn == nil {
		err = &ConfigurationError{Criterion: cst.ID(), Reason: "predicate func not defined"}
	}
	return
}

// Apply validates and hands off to the function.
func (cst *Custom) Apply(qry Query, value any, alias string) (err error) {

	err = cst.Validate()
	if err != nil {
		return
	}

	err = cst.Fn(qry, value, alias)
	return
}
