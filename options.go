package sieve

import (
	nt "sieve/entity"
)

type params struct {
	alias     string
	sortField string
	sortDir   nt.Direction
}

// Option tunes a single call to Filter.
type Option func(*params)

// WithAlias qualifies fields with alias rather than the query's first root alias.
func WithAlias(alias string) Option {
	return func(p *params) {
		p.alias = alias
	}
}

// WithDefaultSort sets the ordering used when neither the filters nor the query specify one.
// An empty field falls back to "id", an empty direction to ascending.
func WithDefaultSort(field string, dir nt.Direction) Option {
	return func(p *params) {
		p.sortField = field
		p.sortDir = dir
	}
}
