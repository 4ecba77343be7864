package duck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"sieve"
	nt "sieve/entity"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, kv ...any)             {}
func (nopLogger) Error(ctx context.Context, msg string, err error, kv ...any) {}

type DuckTestSuite struct {
	suite.Suite
	ctx  context.Context
	dk   *Duck
	fltr *sieve.Filterer
}

func (s *DuckTestSuite) SetupTest() {
	s.ctx = context.Background()

	dk, err := New(nopLogger{})
	s.Require().NoError(err)
	s.dk = dk

	s.Require().NoError(s.dk.Exec(s.ctx, `
		CREATE TABLE users AS
		SELECT * FROM (VALUES
			(1, 'John Smith', 30, 'active'),
			(2, 'Jane Doe', 25, 'active'),
			(3, 'Johanna Berg', 41, 'banned'),
			(4, 'Bob Stone', 17, 'new')
		) AS t(id, name, age, status)
	`))

	s.fltr = sieve.NewFilterer(nil,
		sieve.NewComparison("user", "name", nt.Contains),
		sieve.NewComparison("user", "min_age", nt.Gte).WithDbField("u.age"),
		sieve.NewComparison("user", "status", nt.In),
	)
}

func (s *DuckTestSuite) TearDownTest() {
	s.dk.Close()
}

func (s *DuckTestSuite) ids(qry *Query) []string {
	fields, lines, err := s.dk.Select(s.ctx, qry)
	s.Require().NoError(err)
	s.Require().Equal("id", fields[0])

	ids := []string{}
	for _, line := range lines {
		ids = append(ids, line[0].String())
	}
	return ids
}

func (s *DuckTestSuite) TestFilterAndSelect() {
	qry := NewQuery("users", "u")

	_, err := s.fltr.Filter(s.ctx, "user", sieve.FilterSet{
		"name":    "Joh",
		"min_age": 18,
		"status":  []string{"active", "banned"},
	}, qry)
	s.Require().NoError(err)

	s.Equal([]string{"1", "3"}, s.ids(qry))

	count, err := s.dk.Count(s.ctx, qry)
	s.NoError(err)
	s.Equal(2, count)
}

func (s *DuckTestSuite) TestSortDirective() {
	qry := NewQuery("users", "u")

	_, err := s.fltr.Filter(s.ctx, "user", sieve.FilterSet{
		sieve.SortKey: map[string]any{"field": "age", "direction": "DESC"},
	}, qry)
	s.Require().NoError(err)

	s.Equal([]string{"3", "1", "2", "4"}, s.ids(qry))
}

func (s *DuckTestSuite) TestSortDirectiveOverridesExistingOrder() {
	qry := NewQuery("users", "u")
	qry.OrderBy("u.status", nt.Asc)
	qry.AddOrderBy("u.id", nt.Desc)

	_, err := s.fltr.Filter(s.ctx, "user", sieve.FilterSet{
		sieve.SortKey: map[string]any{"field": "age", "direction": "DESC"},
	}, qry)
	s.Require().NoError(err)

	sql, _, err := qry.SQL()
	s.Require().NoError(err)
	s.Equal("SELECT * FROM users AS u ORDER BY u.age DESC", sql)
	s.Equal([]string{"3", "1", "2", "4"}, s.ids(qry))
}

func (s *DuckTestSuite) TestDefaultSortAndLimit() {
	qry := NewQuery("users", "u")
	qry.Limit = 2

	_, err := s.fltr.Filter(s.ctx, "user", sieve.FilterSet{"name": ""}, qry, sieve.WithDefaultSort("", nt.Desc))
	s.Require().NoError(err)

	s.Equal([]string{"4", "3"}, s.ids(qry))
}

func (s *DuckTestSuite) TestLoad() {
	path := filepath.Join(s.T().TempDir(), "people.ndjson")
	s.Require().NoError(os.WriteFile(path, []byte(
		`{"name":"Ann","age":33}`+"\n"+
			`{"name":"Ben","age":12}`+"\n",
	), 0644))

	s.Require().NoError(s.dk.Load(s.ctx, "people", path))

	fltr := sieve.NewFilterer(nil, sieve.NewComparison("person", "age", nt.Gte))
	qry := NewQuery("people", "p")
	_, err := fltr.Filter(s.ctx, "person", sieve.FilterSet{"age": 18}, qry)
	s.Require().NoError(err)

	count, err := s.dk.Count(s.ctx, qry)
	s.NoError(err)
	s.Equal(1, count)
}

func (s *DuckTestSuite) TestLoadQuotedPathNoLogger() {
	dk, err := New(nil)
	s.Require().NoError(err)
	defer dk.Close()

	path := filepath.Join(s.T().TempDir(), "o'neil.ndjson")
	s.Require().NoError(os.WriteFile(path, []byte(`{"name":"Ann","age":33}`+"\n"), 0644))

	s.Require().NoError(dk.Load(s.ctx, "people", path))

	count, err := dk.Count(s.ctx, NewQuery("people", "p"))
	s.NoError(err)
	s.Equal(1, count)
}

func TestDuckTestSuite(t *testing.T) {
	suite.Run(t, new(DuckTestSuite))
}
