package repository

import (
	"context"
	"errors"
	"fmt"

	"comanda-pos/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// catalogRepository implements the CatalogRepository interface using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalogue repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

// CreateCategory inserts a new category. Duplicate names conflict.
func (r *catalogRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	query := `
		INSERT INTO categories (id, name, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, category.ID, category.Name, category.CreatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			r.logger.Debug().Str("name", category.Name).Msg("category name already exists")
			return model.ErrCategoryExists
		}
		r.logger.Error().Err(err).Str("name", category.Name).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}

	r.logger.Debug().
		Str("category_id", category.ID.String()).
		Str("name", category.Name).
		Msg("category created")

	return nil
}

// ListCategories retrieves all categories ordered by name.
func (r *catalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	query := `
		SELECT id, name, created_at
		FROM categories
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// UpdateCategory renames a category.
func (r *catalogRepository) UpdateCategory(ctx context.Context, category *model.Category) error {
	query := `
		UPDATE categories
		SET name = $2
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, category.ID, category.Name)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return model.ErrCategoryExists
		}
		r.logger.Error().Err(err).Str("category_id", category.ID.String()).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}

	return nil
}

// DeleteCategory removes a category unless products still reference it.
// The referential guard and the delete are a single conditional statement,
// so a racing product insert cannot slip between a check and the delete.
func (r *catalogRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM categories
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM products WHERE category_id = $1)
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists); err != nil {
			r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to probe category existence")
			return fmt.Errorf("failed to probe category: %w", err)
		}
		if exists {
			return model.ErrCategoryInUse
		}
		return model.ErrCategoryNotFound
	}

	r.logger.Debug().Str("category_id", id.String()).Msg("category deleted")

	return nil
}

// CreateProduct inserts a new product.
func (r *catalogRepository) CreateProduct(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, category_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.CreatedAt,
	)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return model.ErrCategoryNotFound
		}
		r.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().
		Str("product_id", product.ID.String()).
		Str("name", product.Name).
		Msg("product created")

	return nil
}

// ListProducts retrieves all products ordered by name.
func (r *catalogRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT id, name, description, price, category_id, created_at
		FROM products
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetProduct retrieves a single product by its ID, or nil when absent.
func (r *catalogRepository) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT id, name, description, price, category_id, created_at
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// UpdateProduct fully replaces a product's mutable fields. Existing line
// items keep their captured prices.
func (r *catalogRepository) UpdateProduct(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, category_id = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
	)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return model.ErrCategoryNotFound
		}
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// DeleteProduct removes a product unless line items reference it.
func (r *catalogRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product referenced by line items")
			return model.ErrProductInUse
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	r.logger.Debug().Str("product_id", id.String()).Msg("product deleted")

	return nil
}

// GetUnitPrice returns the current unit price of a product.
func (r *catalogRepository) GetUnitPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT price FROM products WHERE id = $1`

	var price decimal.Decimal
	err := r.pool.QueryRow(ctx, query, productID).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", productID.String()).Msg("product not found for price lookup")
			return decimal.Zero, model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query unit price")
		return decimal.Zero, fmt.Errorf("failed to query unit price: %w", err)
	}

	return price, nil
}
