package sieve

import (
	"context"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	nt "sieve/entity"
)

// SortKey is reserved for the sort directive, it is never matched against criteria.
const SortKey = "_sort"

// defaultSortField is used when no default sort is given.
const defaultSortField = "id"

// FilterSet maps filter names to raw values.
type FilterSet map[string]any

// Filterer applies filters to queries by way of a fixed catalog of criteria.
// It holds no per-call state and is safe for concurrent use.
type Filterer struct {
	criteria []Criterion
	invalid  error
	logger   nt.Logger
}

// NewFilterer creates a Filterer, criteria are consulted in the order given.
// Logger is optional.
// A misconfigured criterion is reported by Validate and fails every call to Filter.
func NewFilterer(lgr nt.Logger, criteria ...Criterion) *Filterer {

	fltr := &Filterer{
		criteria: append([]Criterion{}, criteria...),
		logger:   lgr,
	}

	for i, criterion := range fltr.criteria {
		err := criterion.Validate()
		if err != nil {
			fltr.invalid = errors.Wrapf(err, "criteria[%d]", i)
			break
		}
	}

	return fltr
}

// Validate returns the first catalog misconfiguration, if any.
func (fltr *Filterer) Validate() error {
	return fltr.invalid
}

// Criteria returns a copy of the catalog.
func (fltr *Filterer) Criteria() []Criterion {
	return append([]Criterion{}, fltr.criteria...)
}

// Filter applies each non-empty filter with every criterion supporting it, then settles ordering.
// Filters are visited in name order.
func (fltr *Filterer) Filter(ctx context.Context, entity string, filters FilterSet, qry Query, opts ...Option) (applied Applied, err error) {

	if fltr.invalid != nil {
		err = fltr.invalid
		fltr.logError(ctx, "filtering refused", err, "entity", entity)
		return
	}

	prm := &params{}
	for _, opt := range opts {
		opt(prm)
	}

	alias, err := resolveAlias(prm.alias, qry)
	if err != nil {
		return
	}

	for _, name := range filters.names() {
		value := filters[name]
		if (nt.Value{Raw: value}).Empty() {
			continue
		}

		for _, criterion := range fltr.criteria {
			if !criterion.Supports(entity, name) {
				continue
			}

			err = criterion.Apply(qry, value, alias)
			if err != nil {
				err = errors.Wrapf(err, "failed to apply filter %q for %s", name, entity)
				fltr.logError(ctx, "filtering aborted", err, "entity", entity)
				return
			}
			applied = append(applied, nt.Applied{Name: name, Criterion: criterion.ID(), Value: value})
		}
	}

	err = orderBy(filters, qry, alias, prm)
	if err != nil {
		return
	}

	fltr.logInfo(ctx, "filtered", "entity", entity, "alias", alias, "applied", applied.Names())
	return
}

// names returns filter names in sorted order, less the sort directive.
func (fs FilterSet) names() []string {

	names := make([]string, 0, len(fs))
	for name := range fs {
		if name == SortKey {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Sort decodes the sort directive, ok is false when it is absent or has no field.
func (fs FilterSet) Sort() (srt nt.Sort, ok bool, err error) {

	raw, found := fs[SortKey]
	if !found || raw == nil {
		return
	}

	switch raw := raw.(type) {
	case nt.Sort:
		srt = raw
	case *nt.Sort:
		srt = *raw
	default:
		err = mapstructure.Decode(raw, &srt)
		if err != nil {
			err = errors.Wrapf(err, "failed to decode %s directive", SortKey)
			return
		}
	}

	ok = srt.Field != ""
	return
}

// unexported

func resolveAlias(alias string, qry Query) (string, error) {

	if alias != "" {
		return alias, nil
	}

	aliases := qry.RootAliases()
	if len(aliases) == 0 || aliases[0] == "" {
		return "", &ConfigurationError{Reason: "no alias given and query has no root alias"}
	}
	return aliases[0], nil
}

func orderBy(filters FilterSet, qry Query, alias string, prm *params) (err error) {

	srt, ok, err := filters.Sort()
	if err != nil {
		return
	}

	switch {
	case ok:
		qry.OrderBy(qualify(srt.Field, alias), nt.ParseDirection(string(srt.Direction)))
	case len(qry.OrderClauses()) > 0:
		// caller established order stands
	default:
		field := prm.sortField
		if field == "" {
			field = defaultSortField
		}
		qry.OrderBy(qualify(field, alias), nt.ParseDirection(string(prm.sortDir)))
	}
	return
}

func qualify(field, alias string) string {
	if strings.Contains(field, ".") {
		return field
	}
	return alias + "." + field
}

func (fltr *Filterer) logInfo(ctx context.Context, msg string, kv ...any) {
	if fltr.logger != nil {
		fltr.logger.Info(ctx, msg, kv...)
	}
}

func (fltr *Filterer) logError(ctx context.Context, msg string, err error, kv ...any) {
	if fltr.logger != nil {
		fltr.logger.Error(ctx, msg, err, kv...)
	}
}
