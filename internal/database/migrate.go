package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// schema is the relational model for the catalogue and the order ledger.
//
// The partial unique index on tabs enforces at most one open tab per table
// number at the storage layer, so concurrent opens race safely: the loser
// surfaces a uniqueness violation instead of a second open tab.
// Deleting a tab cascades to its line items; deleting a category nulls the
// product reference; products with historical line items cannot be deleted.
const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id UUID PRIMARY KEY,
	name VARCHAR(255) NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description TEXT,
	price NUMERIC(10, 2) NOT NULL,
	category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tabs (
	id UUID PRIMARY KEY,
	table_number INTEGER NOT NULL CHECK (table_number > 0),
	status VARCHAR(10) NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
	opened_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	closed_at TIMESTAMPTZ,
	total NUMERIC(10, 2) NOT NULL DEFAULT 0 CHECK (total >= 0),
	item_count INTEGER NOT NULL DEFAULT 0 CHECK (item_count >= 0),
	payment_method VARCHAR(50)
);

CREATE UNIQUE INDEX IF NOT EXISTS tabs_one_open_per_table
	ON tabs (table_number) WHERE status = 'open';

CREATE TABLE IF NOT EXISTS line_items (
	id UUID PRIMARY KEY,
	tab_id UUID NOT NULL REFERENCES tabs(id) ON DELETE CASCADE,
	product_id UUID NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price NUMERIC(10, 2) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS line_items_tab_idx ON line_items (tab_id);
`

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info().Msg("database schema verified")

	return nil
}
