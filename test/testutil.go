//go:build integration
// +build integration

package test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coregx/tabula"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)
)

// DatabaseSetup encapsulates database connection and cleanup.
type DatabaseSetup struct {
	DB        *tabula.DB
	Container testcontainers.Container
	Dialect   string
}

// Close cleans up database resources.
func (ds *DatabaseSetup) Close() {
	if ds.DB != nil {
		ds.DB.Close() //nolint:errcheck
	}
	if ds.Container != nil {
		ds.Container.Terminate(context.Background()) //nolint:errcheck
	}
}

// SetupPostgreSQLTestDB creates a PostgreSQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupPostgreSQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	// Check for manual DSN first (allows testing without Docker)
	if dsn := os.Getenv("POSTGRES_TEST_DSN"); dsn != "" {
		db, err := tabula.Open("postgres", dsn)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "postgres"}
	}

	// Start PostgreSQL in Docker via testcontainers
	pgContainer, err := postgres.Run(
		ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for PostgreSQL integration tests: " + err.Error())
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := tabula.Open("postgres", dsn)
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:        db,
		Container: pgContainer,
		Dialect:   "postgres",
	}
}

// SetupMySQLTestDB creates a MySQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupMySQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	// Check for manual DSN first
	if dsn := os.Getenv("MYSQL_TEST_DSN"); dsn != "" {
		// Ensure parseTime=true is set for time.Time support
		if !strings.Contains(dsn, "parseTime=true") {
			if strings.Contains(dsn, "?") {
				dsn += "&parseTime=true"
			} else {
				dsn += "?parseTime=true"
			}
		}
		db, err := tabula.Open("mysql", dsn)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "mysql"}
	}

	// Start MySQL in Docker via testcontainers
	mysqlContainer, err := mysql.Run(
		ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("user"),
		mysql.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for MySQL integration tests: " + err.Error())
	}

	dsn, err := mysqlContainer.ConnectionString(ctx)
	require.NoError(t, err)

	// parseTime=true makes DATETIME/TIMESTAMP columns scan as time.Time
	// instead of []uint8.
	dsn += "?parseTime=true"

	db, err := tabula.Open("mysql", dsn)
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:        db,
		Container: mysqlContainer,
		Dialect:   "mysql",
	}
}

// SetupSQLiteTestDB creates an in-memory SQLite database.
// Always works, no external dependencies.
func SetupSQLiteTestDB(t *testing.T) *DatabaseSetup {
	db, err := tabula.Open("sqlite", ":memory:")
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:      db,
		Dialect: "sqlite",
	}
}

// CreateWidgetTable creates the widget table used by most suites.
func CreateWidgetTable(t *testing.T, db *tabula.DB, dialect string) {
	var createSQL string

	switch dialect {
	case "postgres":
		createSQL = `
			CREATE TABLE IF NOT EXISTS widget (
				id SERIAL PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				age INTEGER,
				status INTEGER DEFAULT 1,
				added TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	case "mysql":
		createSQL = `
			CREATE TABLE IF NOT EXISTS widget (
				id INT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				age INT,
				status INT DEFAULT 1,
				added TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	case "sqlite":
		createSQL = `
			CREATE TABLE IF NOT EXISTS widget (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name VARCHAR(255) NOT NULL,
				age INTEGER,
				status INTEGER DEFAULT 1,
				added TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	}

	_, err := db.RawExecute(context.Background(), createSQL)
	require.NoError(t, err)

	// Env-DSN targets reuse a database across runs; start from empty.
	_, err = db.RawExecute(context.Background(), "DELETE FROM widget")
	require.NoError(t, err)
}

// CreateWidgetOrderTable creates the widget_order table for JOIN suites.
func CreateWidgetOrderTable(t *testing.T, db *tabula.DB, dialect string) {
	var createSQL string

	switch dialect {
	case "postgres":
		createSQL = `
			CREATE TABLE IF NOT EXISTS widget_order (
				id SERIAL PRIMARY KEY,
				widget_id INTEGER NOT NULL,
				qty INTEGER DEFAULT 1,
				price INTEGER DEFAULT 0
			)
		`
	case "mysql":
		createSQL = `
			CREATE TABLE IF NOT EXISTS widget_order (
				id INT AUTO_INCREMENT PRIMARY KEY,
				widget_id INT NOT NULL,
				qty INT DEFAULT 1,
				price INT DEFAULT 0
			)
		`
	case "sqlite":
		createSQL = `
			CREATE TABLE IF NOT EXISTS widget_order (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				widget_id INTEGER NOT NULL,
				qty INTEGER DEFAULT 1,
				price INTEGER DEFAULT 0
			)
		`
	}

	_, err := db.RawExecute(context.Background(), createSQL)
	require.NoError(t, err)

	_, err = db.RawExecute(context.Background(), "DELETE FROM widget_order")
	require.NoError(t, err)
}

// CreateWidgetHandleTable creates a table with a compound primary key.
func CreateWidgetHandleTable(t *testing.T, db *tabula.DB, dialect string) {
	createSQL := `
		CREATE TABLE IF NOT EXISTS widget_handle (
			widget_id INTEGER NOT NULL,
			handle_id INTEGER NOT NULL,
			label VARCHAR(255),
			PRIMARY KEY (widget_id, handle_id)
		)
	`

	_, err := db.RawExecute(context.Background(), createSQL)
	require.NoError(t, err)

	_, err = db.RawExecute(context.Background(), "DELETE FROM widget_handle")
	require.NoError(t, err)
}

// InsertTestWidgets seeds widgets through the record API, so seeding itself
// exercises the INSERT path on every dialect.
func InsertTestWidgets(t *testing.T, db *tabula.DB, count int) {
	for i := 1; i <= count; i++ {
		w := db.Table("widget").Create(map[string]any{
			"name":   fmt.Sprintf("Widget%d", i),
			"age":    20 + (i % 50), // Ages 20-70
			"status": 1 + (i % 3),   // Statuses 1-3
		})
		require.NoError(t, w.Save())
	}
}

// InsertTestOrders seeds orders for one widget. The id is any because
// key values come back from the driver, not from the seed loop: DELETE
// does not rewind sequences, so tests must never assume ids start at 1.
func InsertTestOrders(t *testing.T, db *tabula.DB, widgetID any, count int) {
	for i := 1; i <= count; i++ {
		o := db.Table("widget_order").Create(map[string]any{
			"widget_id": widgetID,
			"qty":       i,
			"price":     100 * i,
		})
		require.NoError(t, o.Save())
	}
}
