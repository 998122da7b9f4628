package service

import (
	"context"
	"time"

	"comanda-pos/internal/model"

	"github.com/google/uuid"
)

// CatalogService defines operations for category and product management.
type CatalogService interface {
	// CreateCategory registers a new category with a normalized, unique name.
	CreateCategory(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)

	// ListCategories retrieves all categories.
	ListCategories(ctx context.Context) ([]model.Category, error)

	// UpdateCategory renames a category.
	UpdateCategory(ctx context.Context, id uuid.UUID, req *model.CategoryRequest) (*model.Category, error)

	// DeleteCategory removes a category; blocked while products reference it.
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	// CreateProduct registers a new product with normalized text fields.
	CreateProduct(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// ListProducts retrieves all products.
	ListProducts(ctx context.Context) ([]model.Product, error)

	// GetProduct retrieves a single product by ID.
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// UpdateProduct fully replaces a product's mutable fields.
	UpdateProduct(ctx context.Context, id uuid.UUID, req *model.ProductRequest) (*model.Product, error)

	// DeleteProduct removes a product; blocked while line items reference it.
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// LedgerService defines operations on the order ledger: tab lifecycle, line
// item mutation and the running-total invariant.
type LedgerService interface {
	// OpenTab opens a tab for a table; at most one open tab per table.
	OpenTab(ctx context.Context, req *model.OpenTabRequest) (*model.Tab, error)

	// GetTabDetail retrieves a tab with its current line items. A tab with
	// zero items is a valid state, distinct from a missing tab.
	GetTabDetail(ctx context.Context, tabID uuid.UUID) (*model.TabDetail, error)

	// AddItem adds a product to a tab, capturing its current unit price.
	AddItem(ctx context.Context, tabID uuid.UUID, req *model.AddItemRequest) (*model.LineItem, error)

	// RemoveItem removes a line item from a tab, reversing its contribution
	// to the tab's cached total and count.
	RemoveItem(ctx context.Context, tabID, itemID uuid.UUID) error

	// CloseTab closes an open tab, recording the payment method.
	CloseTab(ctx context.Context, tabID uuid.UUID, req *model.CloseTabRequest) error

	// ReopenTab reopens a closed tab, clearing closed-at and payment method.
	ReopenTab(ctx context.Context, tabID uuid.UUID) error

	// DeleteTab removes a tab and all its line items.
	DeleteTab(ctx context.Context, tabID uuid.UUID) error

	// ListOpenTabs retrieves all open tabs ordered by table number.
	ListOpenTabs(ctx context.Context) ([]model.Tab, error)
}

// ReportService defines read-only aggregations over closed tabs.
type ReportService interface {
	// Revenue reports a day's revenue split by payment method; the zero day
	// means today.
	Revenue(ctx context.Context, day time.Time) (*model.RevenueReport, error)

	// ClosedTabs lists closed tabs, optionally filtered by closed-at range.
	ClosedTabs(ctx context.Context, from, to *time.Time) ([]model.Tab, error)

	// TopProducts lists the best-selling products by summed quantity.
	TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error)
}
