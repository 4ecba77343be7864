// Package sieve applies named filter values to a query under construction
// by way of a catalog of criteria, and settles the query's ordering.
package sieve

import (
	"github.com/pkg/errors"

	nt "sieve/entity"
)

// Query specifies a query under construction.
// Sieve only mutates it, the caller owns and executes it.
type Query interface {
	// RootAliases returns the aliases of the root entities, first one is the default
	RootAliases() []string
	// AndWhere adds an AND-combined predicate
	AndWhere(predicate nt.Predicate)
	// SetParameter binds a value to a named parameter
	SetParameter(name string, value any)
	// OrderBy replaces any order by clauses with this one
	OrderBy(field string, dir nt.Direction)
	// AddOrderBy appends an order by clause
	AddOrderBy(field string, dir nt.Direction)
	// OrderClauses returns order by clauses added so far
	OrderClauses() []nt.Sort
}

// ConfigurationError indicates a criterion or filterer that is not fit to be used.
// It is a deployment defect rather than bad input.
type ConfigurationError struct {
	Criterion string
	Reason    string
}

func (ce *ConfigurationError) Error() string {
	if ce.Criterion == "" {
		return "misconfigured: " + ce.Reason
	}
	return "misconfigured criterion " + ce.Criterion + ": " + ce.Reason
}

// IsConfigurationError reports whether a ConfigurationError is in err's chain.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
