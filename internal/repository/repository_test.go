package repository

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		fmt.Println("TEST_DATABASE_URL not set, skipping repository tests")
		os.Exit(0)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to test database: %v\n", err)
		os.Exit(1)
	}
	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ping test database: %v\n", err)
		os.Exit(1)
	}
	testPool = pool

	code := m.Run()
	pool.Close()
	os.Exit(code)
}

// cleanupTable truncates the given tables in one statement; CASCADE takes care
// of dependent rows regardless of the order given.
func cleanupTable(t *testing.T, tables ...string) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tables, ", ")))
	if err != nil {
		t.Fatalf("truncate %v: %v", tables, err)
	}
}
