package sieve

import (
	"github.com/pkg/errors"

	nt "sieve/entity"
)

// CriterionConfig configures a comparison criterion.
type CriterionConfig struct {
	Target  `yaml:",inline"`
	Compare string `yaml:"compare,omitempty"`
}

// Config is the criteria catalog along with filtering defaults.
type Config struct {
	Alias            string            `yaml:"alias,omitempty"`
	DefaultSort      string            `yaml:"default_sort,omitempty"`
	DefaultDirection nt.Direction      `yaml:"default_direction,omitempty"`
	Criteria         []CriterionConfig `yaml:"criteria"`
}

// New creates a Filterer with a comparison criterion per configured entry, in order.
// Compare defaults to eq, and entries missing entity or field are rejected.
func (cfg *Config) New(lgr nt.Logger, extra ...Criterion) (fltr *Filterer, err error) {

	criteria := make([]Criterion, 0, len(cfg.Criteria)+len(extra))
	for i, cc := range cfg.Criteria {

		op := nt.Eq
		if cc.Compare != "" {
			op, err = nt.ParseOperator(cc.Compare)
			if err != nil {
				err = &ConfigurationError{
					Criterion: cc.Entity + "." + cc.Field,
					Reason:    errors.Wrapf(err, "criteria[%d]", i).Error(),
				}
				return
			}
		}

		criteria = append(criteria, &Comparison{Target: cc.Target, Op: op})
	}

	fltr = NewFilterer(lgr, append(criteria, extra...)...)
	err = fltr.Validate()
	if err != nil {
		fltr = nil
	}
	return
}

// Options returns the configured alias and default sort as filter options.
func (cfg *Config) Options() []Option {

	opts := []Option{WithDefaultSort(cfg.DefaultSort, cfg.DefaultDirection)}
	if cfg.Alias != "" {
		opts = append(opts, WithAlias(cfg.Alias))
	}
	return opts
}

// SampleConfig is written by cmd/sieve when no catalog is found.
var SampleConfig = []byte(`# sieve criteria catalog
alias: u
default_sort: id
default_direction: ASC
criteria:
  - entity: user
    field: name
    compare: contains
  - entity: user
    field: min_age
    db_field: u.age
    compare: gte
  - entity: user
    field: max_age
    db_field: u.age
    compare: lte
  - entity: user
    field: status
`)
