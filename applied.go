package sieve

import (
	"fmt"
	"sort"
	"sync"

	"charm.land/lipgloss/v2/table"
	"github.com/google/uuid"

	nt "sieve/entity"
	"sieve/style"
)

// Applied lists the criteria applied during one filtering pass, in application order.
type Applied []nt.Applied

// Names returns the distinct filter names, in application order.
func (ap Applied) Names() []string {

	seen := map[string]bool{}
	names := []string{}
	for _, entry := range ap {
		if seen[entry.Name] {
			continue
		}
		seen[entry.Name] = true
		names = append(names, entry.Name)
	}
	return names
}

// Report renders the entries as a table for a debug panel or terminal.
func (ap Applied) Report() string {

	tbl := table.New()
	style.Table(tbl)
	tbl.Headers("filter", "criterion", "value")

	for _, entry := range ap {
		tbl.Row(entry.Name, entry.Criterion, nt.Value{Raw: entry.Value}.String())
	}

	return tbl.Render()
}

// Collector aggregates applied criteria across passes for an introspection consumer.
// Callers collect explicitly, filtering itself never touches a collector.
type Collector struct {
	id       string
	passes   int
	criteria map[string]nt.Applied
	mu       sync.Mutex
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		id:       uuid.NewString(),
		criteria: map[string]nt.Applied{},
	}
}

// ID identifies the collector, ie for correlating a debug panel with logs.
func (col *Collector) ID() string {
	return col.id
}

// Collect merges a pass, later entries for a filter name replace earlier ones.
func (col *Collector) Collect(applied Applied) {
	col.mu.Lock()
	defer col.mu.Unlock()

	col.passes++
	for _, entry := range applied {
		col.criteria[entry.Name] = entry
	}
}

// Criteria returns a copy of the collected entries by filter name.
func (col *Collector) Criteria() map[string]nt.Applied {
	_, criteria := col.snapshot()
	return criteria
}

// Passes returns the number of passes collected since creation or reset.
func (col *Collector) Passes() int {
	col.mu.Lock()
	defer col.mu.Unlock()

	return col.passes
}

// Reset discards collected entries.
func (col *Collector) Reset() {
	col.mu.Lock()
	defer col.mu.Unlock()

	col.passes = 0
	col.criteria = map[string]nt.Applied{}
}

// Report renders collected entries in filter name order.
func (col *Collector) Report() string {

	passes, criteria := col.snapshot()

	names := make([]string, 0, len(criteria))
	for name := range criteria {
		names = append(names, name)
	}
	sort.Strings(names)

	applied := make(Applied, 0, len(names))
	for _, name := range names {
		applied = append(applied, criteria[name])
	}

	return fmt.Sprintf("%s\n%s", style.MutedStyle.Render(fmt.Sprintf("collector %s, %d passes", col.id, passes)), applied.Report())
}

// snapshot copies passes and entries under one lock
func (col *Collector) snapshot() (passes int, criteria map[string]nt.Applied) {
	col.mu.Lock()
	defer col.mu.Unlock()

	criteria = make(map[string]nt.Applied, len(col.criteria))
	for name, entry := range col.criteria {
		criteria[name] = entry
	}
	return col.passes, criteria
}
