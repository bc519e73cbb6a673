//go:build integration
// +build integration

package test

import (
	"testing"

	"github.com/coregx/tabula"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFinders_AllDatabases validates filtering, ordering and paging across
// all supported databases.
func TestFinders_AllDatabases(t *testing.T) {
	databases := []struct {
		name  string
		setup func(*testing.T) *DatabaseSetup
	}{
		{"SQLite", SetupSQLiteTestDB},
		{"PostgreSQL", SetupPostgreSQLTestDB},
		{"MySQL", SetupMySQLTestDB},
	}

	for _, dbConfig := range databases {
		t.Run(dbConfig.name, func(t *testing.T) {
			ds := dbConfig.setup(t)
			defer ds.Close()

			CreateWidgetTable(t, ds.DB, ds.Dialect)
			InsertTestWidgets(t, ds.DB, 10) // ages 21-30, statuses cycling 1-3

			countWhere := func(build func(*tabula.Record) *tabula.Record) int64 {
				t.Helper()
				cnt, err := build(ds.DB.Table("widget")).Count()
				require.NoError(t, err)
				n, ok := cnt.(int64)
				require.True(t, ok, "COUNT must coerce to int64, got %T", cnt)
				return n
			}

			t.Run("WhereOperators", func(t *testing.T) {
				assert.Equal(t, int64(5), countWhere(func(r *tabula.Record) *tabula.Record {
					return r.WhereGte("age", 26)
				}))
				assert.Equal(t, int64(2), countWhere(func(r *tabula.Record) *tabula.Record {
					return r.WhereLt("age", 23)
				}))
				assert.Equal(t, int64(2), countWhere(func(r *tabula.Record) *tabula.Record {
					return r.WhereLike("name", "Widget1%") // Widget1 and Widget10
				}))
				assert.Equal(t, int64(3), countWhere(func(r *tabula.Record) *tabula.Record {
					return r.WhereIn("age", 21, 25, 30)
				}))
				assert.Equal(t, int64(5), countWhere(func(r *tabula.Record) *tabula.Record {
					return r.WhereNotIn("age", 21, 22, 23, 24, 25)
				}))
				assert.Equal(t, int64(6), countWhere(func(r *tabula.Record) *tabula.Record {
					return r.WhereNotEqual("status", 2)
				}))
				assert.Equal(t, int64(0), countWhere(func(r *tabula.Record) *tabula.Record {
					return r.WhereNull("added")
				}))
				assert.Equal(t, int64(10), countWhere(func(r *tabula.Record) *tabula.Record {
					return r.WhereNotNull("added")
				}))
			})

			t.Run("WhereAnyIs", func(t *testing.T) {
				// name = 'Widget1' OR age > 29
				n := countWhere(func(r *tabula.Record) *tabula.Record {
					return r.WhereAnyIs(
						[]map[string]any{
							{"name": "Widget1"},
							{"age": 29},
						},
						map[string]string{"age": ">"},
					)
				})
				assert.Equal(t, int64(2), n)
			})

			t.Run("OrderByLimit", func(t *testing.T) {
				widgets, err := ds.DB.Table("widget").
					OrderByAsc("age").
					Limit(3).
					FindMany()
				require.NoError(t, err)
				require.Len(t, widgets, 3)
				for i, w := range widgets {
					age, _ := w.Int("age")
					assert.Equal(t, int64(21+i), age)
				}
			})

			t.Run("Offset", func(t *testing.T) {
				widgets, err := ds.DB.Table("widget").
					OrderByAsc("age").
					Limit(3).
					Offset(3).
					FindMany()
				require.NoError(t, err)
				require.Len(t, widgets, 3)
				age, _ := widgets[0].Int("age")
				assert.Equal(t, int64(24), age)
			})

			t.Run("OrderByDesc", func(t *testing.T) {
				w, err := ds.DB.Table("widget").OrderByDesc("age").FindOne()
				require.NoError(t, err)
				assert.Equal(t, "Widget10", w.String("name"))
			})

			t.Run("SelectSubset", func(t *testing.T) {
				w, err := ds.DB.Table("widget").Select("name").FindOne()
				require.NoError(t, err)
				assert.True(t, w.Has("name"))
				assert.False(t, w.Has("age"))
			})

			t.Run("Distinct", func(t *testing.T) {
				rows, err := ds.DB.Table("widget").
					Select("status").
					Distinct().
					FindArray()
				require.NoError(t, err)
				assert.Len(t, rows, 3)
			})

			t.Run("FindOneMiss", func(t *testing.T) {
				_, err := ds.DB.Table("widget").Where("age", 999).FindOne()
				assert.ErrorIs(t, err, tabula.ErrNotFound)
			})
		})
	}
}

// TestAggregates_AllDatabases checks aggregate coercion against each
// database's native result types.
func TestAggregates_AllDatabases(t *testing.T) {
	databases := []struct {
		name  string
		setup func(*testing.T) *DatabaseSetup
	}{
		{"SQLite", SetupSQLiteTestDB},
		{"PostgreSQL", SetupPostgreSQLTestDB},
		{"MySQL", SetupMySQLTestDB},
	}

	for _, dbConfig := range databases {
		t.Run(dbConfig.name, func(t *testing.T) {
			ds := dbConfig.setup(t)
			defer ds.Close()

			CreateWidgetTable(t, ds.DB, ds.Dialect)
			InsertTestWidgets(t, ds.DB, 10) // ages 21-30

			t.Run("Count", func(t *testing.T) {
				cnt, err := ds.DB.Table("widget").Count()
				require.NoError(t, err)
				assert.Equal(t, int64(10), cnt)
			})

			t.Run("MinMax", func(t *testing.T) {
				min, err := ds.DB.Table("widget").Min("age")
				require.NoError(t, err)
				assert.Equal(t, int64(21), min)

				max, err := ds.DB.Table("widget").Max("age")
				require.NoError(t, err)
				assert.Equal(t, int64(30), max)
			})

			t.Run("Sum", func(t *testing.T) {
				sum, err := ds.DB.Table("widget").Sum("age")
				require.NoError(t, err)
				assert.Equal(t, int64(255), sum)
			})

			t.Run("AvgFractional", func(t *testing.T) {
				// Postgres returns numeric as text, MySQL as decimal;
				// both must land as float64 here.
				avg, err := ds.DB.Table("widget").Avg("age")
				require.NoError(t, err)
				assert.Equal(t, float64(25.5), avg)
			})

			t.Run("AvgIntegral", func(t *testing.T) {
				avg, err := ds.DB.Table("widget").WhereIn("age", 21, 23).Avg("age")
				require.NoError(t, err)
				assert.Equal(t, int64(22), avg)
			})

			t.Run("EmptyMatch", func(t *testing.T) {
				cnt, err := ds.DB.Table("widget").Where("age", 999).Count()
				require.NoError(t, err)
				assert.Equal(t, int64(0), cnt)

				max, err := ds.DB.Table("widget").Where("age", 999).Max("age")
				require.NoError(t, err)
				assert.Equal(t, int64(0), max)
			})
		})
	}
}

// TestGroupByHaving_AllDatabases aggregates per group and filters groups.
func TestGroupByHaving_AllDatabases(t *testing.T) {
	databases := []struct {
		name  string
		setup func(*testing.T) *DatabaseSetup
	}{
		{"SQLite", SetupSQLiteTestDB},
		{"PostgreSQL", SetupPostgreSQLTestDB},
		{"MySQL", SetupMySQLTestDB},
	}

	for _, dbConfig := range databases {
		t.Run(dbConfig.name, func(t *testing.T) {
			ds := dbConfig.setup(t)
			defer ds.Close()

			CreateWidgetTable(t, ds.DB, ds.Dialect)
			InsertTestWidgets(t, ds.DB, 10) // statuses: 1 x3, 2 x4, 3 x3

			t.Run("GroupBy", func(t *testing.T) {
				rows, err := ds.DB.Table("widget").
					Select("status").
					SelectExprAs("COUNT(*)", "cnt").
					GroupBy("status").
					OrderByAsc("status").
					FindArray()
				require.NoError(t, err)
				require.Len(t, rows, 3)
				assert.EqualValues(t, 1, rows[0]["status"])
				assert.EqualValues(t, 3, rows[0]["cnt"])
				assert.EqualValues(t, 2, rows[1]["status"])
				assert.EqualValues(t, 4, rows[1]["cnt"])
			})

			t.Run("Having", func(t *testing.T) {
				// Alias references in HAVING are not portable; the raw
				// fragment repeats the aggregate instead.
				rows, err := ds.DB.Table("widget").
					Select("status").
					SelectExprAs("COUNT(*)", "cnt").
					GroupBy("status").
					HavingRaw("COUNT(*) > ?", 3).
					FindArray()
				require.NoError(t, err)
				require.Len(t, rows, 1)
				assert.EqualValues(t, 2, rows[0]["status"])
				assert.EqualValues(t, 4, rows[0]["cnt"])
			})
		})
	}
}
