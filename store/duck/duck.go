package duck

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"

	nt "sieve/entity"
)

// Duck runs queries against an in-memory duckdb.
type Duck struct {
	db     *sql.DB
	logger nt.Logger
}

// New opens an in-memory duckdb, logger is optional.
func New(lgr nt.Logger) (dk *Duck, err error) {

	db, err := sql.Open("duckdb", "")
	if err != nil {
		err = errors.Wrapf(err, "failed to open memo duck")
		return
	}

	dk = &Duck{
		db:     db,
		logger: lgr,
	}

	return
}

// Close the db.
func (dk *Duck) Close() {
	dk.db.Close()
}

// Exec runs a statement, ie for creating fixtures.
func (dk *Duck) Exec(ctx context.Context, stmt string, args ...any) (err error) {

	_, err = dk.db.ExecContext(ctx, stmt, args...)
	err = errors.Wrapf(err, "failed to exec")
	return
}

// Load newline delimited json from path into a new table, adding an id column.
func (dk *Duck) Load(ctx context.Context, table, path string) (err error) {

	create := fmt.Sprintf(`
		CREATE TABLE %s AS
		SELECT
			ROW_NUMBER() OVER () AS id,
			*
		FROM read_json_auto(%s,
			format='newline_delimited',
			maximum_object_size=16777216)
	`, quoteIdent(table), quoteString(path))

	_, err = dk.db.ExecContext(ctx, create)
	if err != nil {
		err = errors.Wrapf(err, "failed to create table %s from %s", table, path)
		return
	}

	if dk.logger != nil {
		dk.logger.Info(ctx, "loaded table", "table", table, "path", path)
	}
	return
}

// Select returns matching rows, with field names in column order.
func (dk *Duck) Select(ctx context.Context, qry *Query) (fields []string, lines []nt.Line, err error) {

	query, args, err := qry.SQL()
	if err != nil {
		return
	}

	rows, err := dk.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = errors.Wrapf(err, "failed to query %s", qry.Table)
		return
	}
	defer rows.Close()

	fields, err = rows.Columns()
	if err != nil {
		err = errors.Wrapf(err, "failed to get cols from query rows")
		return
	}

	for rows.Next() {
		var vals []any
		vals, err = scanRow(rows, len(fields))
		if err != nil {
			err = errors.Wrapf(err, "failed to scan row")
			return
		}

		line := make(nt.Line, len(vals))
		for i, val := range vals {
			line[i] = nt.Value{Raw: val}
		}
		lines = append(lines, line)
	}

	err = rows.Err()
	err = errors.Wrapf(err, "error iterating rows")
	return
}

// Count returns the number of matching rows.
func (dk *Duck) Count(ctx context.Context, qry *Query) (count int, err error) {

	query, args, err := qry.CountSQL()
	if err != nil {
		return
	}

	err = dk.db.QueryRowContext(ctx, query, args...).Scan(&count)
	err = errors.Wrapf(err, "failed to count %s", qry.Table)
	return
}

// unexported

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteString(str string) string {
	return "'" + strings.ReplaceAll(str, "'", "''") + "'"
}

func scanRow(rows *sql.Rows, columnCount int) ([]any, error) {
	vals := make([]any, columnCount)
	ptrs := make([]any, columnCount)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	err := rows.Scan(ptrs...)
	return vals, err
}
