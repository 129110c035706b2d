//go:build database

package integration

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/buffos/revenue-timeline/internal/dataset"
	"github.com/buffos/revenue-timeline/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var movies = []timeline.Record{
	{Title: "Heat", ReleaseYear: 1995, Gross: 67436818},
	{Title: "Se7en", ReleaseYear: 1995, Gross: 100125643},
	{Title: "Fargo", ReleaseYear: 1996, Gross: 24611975},
	{Title: "Titanic", ReleaseYear: 1997, Gross: 659325379},
	{Title: "Unreleased", ReleaseYear: 1998, Gross: math.NaN()},
}

// roundTrip stores the records, loads them back through the configured
// source and checks the aggregated series.
func roundTrip(t *testing.T, driver dataset.Driver, dsn string) {
	t.Helper()
	ctx := context.Background()

	db, err := dataset.Open(ctx, driver, dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	require.NoError(t, dataset.StoreRecords(ctx, db, driver, "movies_it", movies))

	records, err := dataset.Load(ctx, dataset.Source{Driver: driver, DSN: dsn, Table: "movies_it"})
	require.NoError(t, err)
	require.Len(t, records, len(movies))
	nulls := 0
	for _, r := range records {
		if math.IsNaN(r.Gross) {
			nulls++
		}
	}
	assert.Equal(t, 1, nulls, "NULL gross loads as NaN")

	points := timeline.Aggregate(records)
	require.Len(t, points, 3, "the NaN row is dropped")
	assert.InDelta(t, 83781230.5, points[0].AverageRevenue, 1e-6)
	assert.Equal(t, 1997, points[2].Year)
}

// TestStoreAndLoadWithMySQL round-trips records through a MySQL table.
func TestStoreAndLoadWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "timeline",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	roundTrip(t, dataset.MySQLDriver, fmt.Sprintf("root:secret123@tcp(%s:%s)/timeline", host, port.Port()))
}

// TestStoreAndLoadWithPostgres round-trips records through a PostgreSQL table.
func TestStoreAndLoadWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	roundTrip(t, dataset.PostgresDriver, fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port()))
}
