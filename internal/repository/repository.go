package repository

import (
	"context"
	"errors"
	"time"

	"comanda-pos/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// CatalogRepository defines the interface for catalogue data access operations.
type CatalogRepository interface {
	// CreateCategory inserts a new category. Duplicate names conflict.
	CreateCategory(ctx context.Context, category *model.Category) error

	// ListCategories retrieves all categories ordered by name.
	ListCategories(ctx context.Context) ([]model.Category, error)

	// UpdateCategory renames a category.
	UpdateCategory(ctx context.Context, category *model.Category) error

	// DeleteCategory removes a category unless products still reference it.
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	// CreateProduct inserts a new product.
	CreateProduct(ctx context.Context, product *model.Product) error

	// ListProducts retrieves all products ordered by name.
	ListProducts(ctx context.Context) ([]model.Product, error)

	// GetProduct retrieves a single product by its ID, or nil when absent.
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// UpdateProduct fully replaces a product's mutable fields.
	UpdateProduct(ctx context.Context, product *model.Product) error

	// DeleteProduct removes a product unless line items reference it.
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// GetUnitPrice returns the current unit price of a product. This is the
	// narrow contract the order ledger consumes when capturing prices.
	GetUnitPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
}

// TabRepository defines the interface for order ledger data access operations.
// Every mutation that touches a tab's cached total/item count runs inside a
// single transaction so the aggregate is never observably out of sync with
// the line items.
type TabRepository interface {
	// OpenTab inserts a new open tab, racing against the partial unique
	// index on (table_number) WHERE status = 'open'.
	OpenTab(ctx context.Context, tab *model.Tab) error

	// GetTab retrieves a tab by its ID, or nil when absent.
	GetTab(ctx context.Context, id uuid.UUID) (*model.Tab, error)

	// GetTabItems retrieves the tab's current line items in insertion order,
	// joined with product names.
	GetTabItems(ctx context.Context, tabID uuid.UUID) ([]model.TabItem, error)

	// AddItem inserts a line item with its captured unit price and increments
	// the tab's cached total and item count, all in one transaction.
	AddItem(ctx context.Context, item *model.LineItem) error

	// RemoveItem decrements the tab's cached total and item count by the line
	// item's contribution and deletes it, all in one transaction. The line
	// item must belong to the given tab.
	RemoveItem(ctx context.Context, tabID, itemID uuid.UUID) error

	// CloseTab transitions an open tab to closed via a conditional update.
	CloseTab(ctx context.Context, id uuid.UUID, paymentMethod string, closedAt time.Time) error

	// ReopenTab transitions a closed tab back to open, clearing closed-at and
	// payment method. Reopening an already-open tab is a no-op.
	ReopenTab(ctx context.Context, id uuid.UUID) error

	// DeleteTab removes a tab and cascades to its line items.
	DeleteTab(ctx context.Context, id uuid.UUID) error

	// ListOpenTabs retrieves all open tabs ordered by table number.
	ListOpenTabs(ctx context.Context) ([]model.Tab, error)
}

// ReportRepository defines read-only aggregations over closed tabs and
// historical line items. It never mutates ledger state.
type ReportRepository interface {
	// RevenueByPaymentMethod sums closed-tab totals per payment method for
	// closed_at within [from, to).
	RevenueByPaymentMethod(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error)

	// ClosedTabs retrieves closed tabs, optionally filtered by a closed-at
	// range, newest first.
	ClosedTabs(ctx context.Context, from, to *time.Time) ([]model.Tab, error)

	// TopProducts retrieves the top products by summed quantity across all
	// line items ever recorded, joined through category.
	TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error)
}

// PostgreSQL error codes surfaced by schema constraints.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
