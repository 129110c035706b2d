package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/buffos/revenue-timeline/timeline"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Driver is a supported SQL backend.
type Driver string

// Supported drivers.
const (
	SQLiteDriver   Driver = "sqlite"
	PostgresDriver Driver = "postgres"
	MySQLDriver    Driver = "mysql"
)

// ValidDrivers lists every Driver LoadSQL accepts.
var ValidDrivers = map[Driver]struct{}{
	SQLiteDriver:   {},
	PostgresDriver: {},
	MySQLDriver:    {},
}

// DefaultTable is the table read when none is configured.
const DefaultTable = "movies"

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateTableName rejects anything that is not a plain SQL identifier.
func ValidateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: table name cannot be empty", ErrInvalidTable)
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", ErrInvalidTable, name)
	}
	return nil
}

// ParseDriver normalises user input such as "postgresql" or "sqlite3".
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return SQLiteDriver, nil
	case "postgres", "postgresql", "pgx":
		return PostgresDriver, nil
	case "mysql":
		return MySQLDriver, nil
	}
	return "", fmt.Errorf("%w: driver %q (must be sqlite, postgres, mysql)", ErrUnsupportedSource, s)
}

func (d Driver) sqlName() string {
	switch d {
	case PostgresDriver:
		return "pgx"
	case MySQLDriver:
		return "mysql"
	}
	return "sqlite"
}

func (d Driver) quote(name string) string {
	if d == MySQLDriver {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

func (d Driver) placeholder(n int) string {
	if d == PostgresDriver {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Open opens and pings a database for driver.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	if _, ok := ValidDrivers[driver]; !ok {
		return nil, fmt.Errorf("%w: driver %q", ErrUnsupportedSource, driver)
	}
	db, err := sql.Open(driver.sqlName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == SQLiteDriver {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// LoadSQL reads title, release_year and gross from table. NULL numbers
// become NaN so aggregation drops them.
func LoadSQL(ctx context.Context, driver Driver, dsn, table string) ([]timeline.Record, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}
	db, err := Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	return QueryRecords(ctx, db, driver, table)
}

// QueryRecords reads every row of table from an open database.
func QueryRecords(ctx context.Context, db *sql.DB, driver Driver, table string) ([]timeline.Record, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT title, release_year, gross FROM %s", driver.quote(table))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var records []timeline.Record
	for rows.Next() {
		var (
			title       sql.NullString
			year, gross sql.NullFloat64
		)
		if err := rows.Scan(&title, &year, &gross); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, timeline.Record{
			Title:       title.String,
			ReleaseYear: nullToNaN(year),
			Gross:       nullToNaN(gross),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return records, nil
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// StoreRecords creates table if needed and inserts records in a single
// transaction. It is the inverse of QueryRecords and backs the import
// command.
func StoreRecords(ctx context.Context, db *sql.DB, driver Driver, table string, records []timeline.Record) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}
	quoted := driver.quote(table)

	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	title VARCHAR(512),
	release_year DOUBLE PRECISION,
	gross DOUBLE PRECISION
)`, quoted)
	if _, err := db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := fmt.Sprintf("INSERT INTO %s (title, release_year, gross) VALUES (%s, %s, %s)",
		quoted, driver.placeholder(1), driver.placeholder(2), driver.placeholder(3))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Title, nanToNull(r.ReleaseYear), nanToNull(r.Gross)); err != nil {
			return fmt.Errorf("failed to insert %q: %w", r.Title, err)
		}
	}
	return tx.Commit()
}

func nanToNull(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
