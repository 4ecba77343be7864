package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/clarktrimble/sabot"

	"sieve"
	nt "sieve/entity"
	"sieve/store/duck"
	"sieve/util"
)

func main() {

	cfgPath := flag.String("config", "sieve.yaml", "criteria catalog, a sample is written if missing")
	table := flag.String("table", "data", "table name to load into")
	limit := flag.Int("limit", 20, "max rows to show")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <entity> <data.ndjson> [name=value ...] [_sort=field[:dir]]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}
	entity, dataPath := flag.Arg(0), flag.Arg(1)

	ctx := context.Background()
	lgr := &sabot.Sabot{Writer: os.Stderr}

	err := util.SampleConfig(sieve.SampleConfig, *cfgPath, 0644)
	if err != nil {
		lgr.Error(ctx, "failed to write sample config", err)
		os.Exit(1)
	}

	cfg := &sieve.Config{}
	err = util.LoadConfig(cfg, *cfgPath)
	if err != nil {
		lgr.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	fltr, err := cfg.New(lgr)
	if err != nil {
		lgr.Error(ctx, "failed to create filterer", err)
		os.Exit(1)
	}

	dk, err := duck.New(lgr)
	if err != nil {
		lgr.Error(ctx, "failed to create duck", err)
		os.Exit(1)
	}
	defer dk.Close()

	err = dk.Load(ctx, *table, dataPath)
	if err != nil {
		lgr.Error(ctx, "failed to load data", err)
		os.Exit(1)
	}

	alias := cfg.Alias
	if alias == "" {
		alias = string((*table)[0])
	}
	qry := duck.NewQuery(*table, alias)
	qry.Limit = *limit

	applied, err := fltr.Filter(ctx, entity, parseFilters(flag.Args()[2:]), qry, cfg.Options()...)
	if err != nil {
		lgr.Error(ctx, "failed to filter", err)
		os.Exit(1)
	}

	query, args, err := qry.SQL()
	if err != nil {
		lgr.Error(ctx, "failed to render query", err)
		os.Exit(1)
	}
	fmt.Printf("%s\n%v\n\n", query, args)

	fields, lines, err := dk.Select(ctx, qry)
	if err != nil {
		lgr.Error(ctx, "failed to select", err)
		os.Exit(1)
	}

	for _, line := range lines {
		pairs := make([]string, len(line))
		for i, val := range line {
			pairs[i] = fmt.Sprintf("%s=%s", fields[i], val.String())
		}
		fmt.Println(strings.Join(pairs, " "))
	}

	fmt.Printf("\n%s\n", applied.Report())
}

// parseFilters turns name=value args into a filter set, _sort takes field[:dir]
func parseFilters(args []string) sieve.FilterSet {

	filters := sieve.FilterSet{}
	for _, arg := range args {
		name, value, _ := strings.Cut(arg, "=")

		if name == sieve.SortKey {
			field, dir, _ := strings.Cut(value, ":")
			filters[name] = nt.Sort{Field: field, Direction: nt.ParseDirection(dir)}
			continue
		}

		filters[name] = value
	}
	return filters
}
