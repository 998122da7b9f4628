package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"comanda-pos/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the
// application schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedCatalog inserts a category and a few products, returning the product
// IDs keyed by name.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) map[string]uuid.UUID {
	t.Helper()

	ctx := context.Background()

	categoryID := uuid.New()
	_, err := pool.Exec(ctx,
		"INSERT INTO categories (id, name) VALUES ($1, $2)",
		categoryID, "bebidas",
	)
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	products := []struct {
		name  string
		price string
	}{
		{"agua mineral", "3.00"},
		{"cafe com leite", "7.50"},
		{"porcao de fritas", "25.90"},
	}

	ids := make(map[string]uuid.UUID, len(products))
	for _, p := range products {
		id := uuid.New()
		_, err := pool.Exec(ctx,
			"INSERT INTO products (id, name, price, category_id) VALUES ($1, $2, $3, $4)",
			id, p.name, decimal.RequireFromString(p.price), categoryID,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.name, err)
		}
		ids[p.name] = id
	}

	return ids
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"line_items", "tabs", "products", "categories"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
