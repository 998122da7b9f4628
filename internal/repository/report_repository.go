package repository

import (
	"context"
	"fmt"
	"time"

	"comanda-pos/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// reportRepository implements the ReportRepository interface using PostgreSQL.
// All queries are read-only aggregations over closed tabs and line items.
type reportRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReportRepository creates a new PostgreSQL-backed report repository.
func NewReportRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReportRepository {
	return &reportRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "report").Logger(),
	}
}

// RevenueByPaymentMethod sums closed-tab totals per payment method for
// closed_at within [from, to).
func (r *reportRepository) RevenueByPaymentMethod(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT payment_method, SUM(total)
		FROM tabs
		WHERE status = $1 AND closed_at >= $2 AND closed_at < $3
		GROUP BY payment_method
	`

	rows, err := r.pool.Query(ctx, query, model.TabStatusClosed, from, to)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query revenue")
		return nil, fmt.Errorf("failed to query revenue: %w", err)
	}
	defer rows.Close()

	revenue := make(map[string]decimal.Decimal)
	for rows.Next() {
		var method *string
		var sum decimal.Decimal
		if err := rows.Scan(&method, &sum); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan revenue row")
			return nil, fmt.Errorf("failed to scan revenue: %w", err)
		}
		// payment_method is never null on a closed tab, but a null group
		// must not panic the report.
		if method != nil {
			revenue[*method] = sum
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating revenue rows")
		return nil, fmt.Errorf("error iterating revenue: %w", err)
	}

	return revenue, nil
}

// ClosedTabs retrieves closed tabs, optionally filtered by a closed-at range,
// newest first.
func (r *reportRepository) ClosedTabs(ctx context.Context, from, to *time.Time) ([]model.Tab, error) {
	query := `
		SELECT id, table_number, status, opened_at, closed_at, total, item_count, payment_method
		FROM tabs
		WHERE status = $1
		  AND ($2::timestamptz IS NULL OR closed_at >= $2)
		  AND ($3::timestamptz IS NULL OR closed_at < $3)
		ORDER BY closed_at DESC
	`

	rows, err := r.pool.Query(ctx, query, model.TabStatusClosed, from, to)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query closed tabs")
		return nil, fmt.Errorf("failed to query closed tabs: %w", err)
	}
	defer rows.Close()

	var tabs []model.Tab
	for rows.Next() {
		var t model.Tab
		err := rows.Scan(&t.ID, &t.TableNumber, &t.Status, &t.OpenedAt, &t.ClosedAt, &t.Total, &t.ItemCount, &t.PaymentMethod)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan closed tab row")
			return nil, fmt.Errorf("failed to scan closed tab: %w", err)
		}
		tabs = append(tabs, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating closed tab rows")
		return nil, fmt.Errorf("error iterating closed tabs: %w", err)
	}

	return tabs, nil
}

// TopProducts retrieves the top products by summed quantity across all line
// items ever recorded, joined through category.
func (r *reportRepository) TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error) {
	query := `
		SELECT p.id, p.name, COALESCE(c.name, ''), SUM(li.quantity) AS total_quantity
		FROM line_items li
		JOIN products p ON p.id = li.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		GROUP BY p.id, p.name, c.name
		ORDER BY total_quantity DESC, p.name
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Int("limit", limit).Msg("failed to query top products")
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	var products []model.TopProduct
	for rows.Next() {
		var p model.TopProduct
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.CategoryName, &p.TotalQuantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan top product row")
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating top product rows")
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return products, nil
}
