package core

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockConn wraps a sqlmock connection in a DB under the given driver
// name, with exact-match SQL expectations.
func mockConn(t *testing.T, driverName string, opts ...Option) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	db := WrapDB(driverName, sqlDB, opts...)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// TestFindOne_HydratesRow tests fetching and hydrating a single row.
func TestFindOne_HydratesRow(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	mock.ExpectPrepare("SELECT * FROM `widget` WHERE `id` = ? LIMIT 1").
		ExpectQuery().
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Fred"))

	rec, err := db.Table("widget").FindOne(1)
	require.NoError(t, err)

	assert.Equal(t, "Fred", rec.String("name"))
	id, ok := rec.Int("id")
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
	assert.False(t, rec.IsNew())
	assert.False(t, rec.IsDirty("name"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindOne_NotFound tests the miss sentinel.
func TestFindOne_NotFound(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	mock.ExpectPrepare("SELECT * FROM `widget` WHERE `id` = ? LIMIT 1").
		ExpectQuery().
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := db.Table("widget").FindOne(99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindMany_HydratesAllRows tests multi-row fetches.
func TestFindMany_HydratesAllRows(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	mock.ExpectPrepare("SELECT * FROM `widget` WHERE `age` > ?").
		ExpectQuery().
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "Fred").
			AddRow(int64(2), "Bob"))

	records, err := db.Table("widget").WhereGt("age", 5).FindMany()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Fred", records[0].String("name"))
	assert.Equal(t, "Bob", records[1].String("name"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindArray_ReturnsRawRows tests the unhydrated fetch.
func TestFindArray_ReturnsRawRows(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	mock.ExpectPrepare("SELECT * FROM `widget`").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Fred"))

	rows, err := db.Table("widget").FindArray()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Fred", rows[0]["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindResultSet_WrapsRecords tests result set construction.
func TestFindResultSet_WrapsRecords(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	mock.ExpectPrepare("SELECT * FROM `widget`").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "Fred").
			AddRow(int64(2), "Bob"))

	rs, err := db.Table("widget").FindResultSet()
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, []any{"Fred", "Bob"}, rs.Get("name"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindOne_ResetsColumnsKeepsConditions tests post-run state: the
// column list resets to the default while conditions survive a re-run.
func TestFindOne_ResetsColumnsKeepsConditions(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	r := db.Table("widget").Select("name").Where("id", 1)

	mock.ExpectPrepare("SELECT `name` FROM `widget` WHERE `id` = ? LIMIT 1").
		ExpectQuery().
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Fred"))

	_, err := r.FindOne()
	require.NoError(t, err)

	mock.ExpectPrepare("SELECT * FROM `widget` WHERE `id` = ? LIMIT 1").
		ExpectQuery().
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Fred"))

	_, err = r.FindOne()
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindOne_PostgresBindVars tests that placeholders rebind to the
// driver's dollar form before preparing.
func TestFindOne_PostgresBindVars(t *testing.T) {
	db, mock := mockConn(t, "postgres")

	mock.ExpectPrepare(`SELECT * FROM "widget" WHERE "name" = $1 AND "age" > $2 LIMIT 1`).
		ExpectQuery().
		WithArgs("Fred", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err := db.Table("widget").Where("name", "Fred").WhereGt("age", 5).FindOne()
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRawQuery_RunsVerbatim tests raw positional queries through the
// finder path.
func TestRawQuery_RunsVerbatim(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	mock.ExpectPrepare("SELECT w.* FROM widget w WHERE w.legs = ?").
		ExpectQuery().
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "legs"}).AddRow(int64(3), int64(4)))

	rec, err := db.Table("widget").
		RawQuery("SELECT w.* FROM widget w WHERE w.legs = ?", 4).
		FindOne()
	require.NoError(t, err)
	legs, _ := rec.Int("legs")
	assert.Equal(t, int64(4), legs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRawQueryNamed_BindsParameters tests that :name placeholders bind
// from the map before execution.
func TestRawQueryNamed_BindsParameters(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	mock.ExpectPrepare("SELECT * FROM widget WHERE legs = ? AND name = ?").
		ExpectQuery().
		WithArgs(4, "Fred").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err := db.Table("widget").
		RawQueryNamed("SELECT * FROM widget WHERE legs = :legs AND name = :name",
			map[string]any{"legs": 4, "name": "Fred"}).
		FindOne()
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCount_CoercesToInt tests COUNT through the aggregate path.
func TestCount_CoercesToInt(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	mock.ExpectPrepare("SELECT COUNT(*) AS `count` FROM `widget` LIMIT 1").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := db.Table("widget").Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCount_Column tests counting a specific column.
func TestCount_Column(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	mock.ExpectPrepare("SELECT COUNT(`name`) AS `count` FROM `widget` LIMIT 1").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	n, err := db.Table("widget").Count("name")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAggregates_NumericCoercion tests the coercion rules across result
// shapes the drivers hand back.
func TestAggregates_NumericCoercion(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	// Integral float comes back as int64.
	mock.ExpectPrepare("SELECT MAX(`age`) AS `max` FROM `widget` LIMIT 1").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(float64(90)))
	v, err := db.Table("widget").Max("age")
	require.NoError(t, err)
	assert.Equal(t, int64(90), v)

	// Fractional stays float64.
	mock.ExpectPrepare("SELECT AVG(`age`) AS `avg` FROM `widget` LIMIT 1").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(float64(12.5)))
	v, err = db.Table("widget").Avg("age")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	// Digit strings parse.
	mock.ExpectPrepare("SELECT SUM(`age`) AS `sum` FROM `widget` LIMIT 1").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("120"))
	v, err = db.Table("widget").Sum("age")
	require.NoError(t, err)
	assert.Equal(t, int64(120), v)

	// Fractional strings too; Postgres renders numeric as text.
	mock.ExpectPrepare("SELECT AVG(`age`) AS `avg` FROM `widget` LIMIT 1").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow("7.5"))
	v, err = db.Table("widget").Avg("age")
	require.NoError(t, err)
	assert.Equal(t, 7.5, v)

	// NULL aggregate is zero.
	mock.ExpectPrepare("SELECT MIN(`age`) AS `min` FROM `widget` LIMIT 1").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"min"}).AddRow(nil))
	v, err = db.Table("widget").Min("age")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAggregate_EmptyResultIsZero tests the no-rows aggregate path.
func TestAggregate_EmptyResultIsZero(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	mock.ExpectPrepare("SELECT COUNT(*) AS `count` FROM `widget` WHERE `age` > ? LIMIT 1").
		ExpectQuery().
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"count"}))

	n, err := db.Table("widget").WhereGt("age", 100).Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAggregate_RestoresSelectedColumns tests that an aggregate run in
// the middle of building leaves explicit selects untouched.
func TestAggregate_RestoresSelectedColumns(t *testing.T) {
	db, mock := mockConn(t, "sqlite")

	r := db.Table("widget").Select("name")

	mock.ExpectPrepare("SELECT COUNT(*) AS `count` FROM `widget` LIMIT 1").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	_, err := r.Count()
	require.NoError(t, err)

	mock.ExpectPrepare("SELECT `name` FROM `widget` LIMIT 1").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Fred"))

	_, err = r.FindOne()
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
