package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comanda-pos/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// tabRepository implements the TabRepository interface using PostgreSQL.
type tabRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewTabRepository creates a new PostgreSQL-backed tab repository.
func NewTabRepository(pool *pgxpool.Pool, logger zerolog.Logger) TabRepository {
	return &tabRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "tab").Logger(),
	}
}

// OpenTab inserts a new open tab. The partial unique index on
// (table_number) WHERE status = 'open' decides races between concurrent
// opens for the same table: exactly one insert wins.
func (r *tabRepository) OpenTab(ctx context.Context, tab *model.Tab) error {
	query := `
		INSERT INTO tabs (id, table_number, status, opened_at, total, item_count)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		tab.ID,
		tab.TableNumber,
		tab.Status,
		tab.OpenedAt,
		tab.Total,
		tab.ItemCount,
	)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			r.logger.Debug().Int("table_number", tab.TableNumber).Msg("table already has an open tab")
			return model.ErrTableOccupied
		}
		r.logger.Error().Err(err).Int("table_number", tab.TableNumber).Msg("failed to open tab")
		return fmt.Errorf("failed to open tab: %w", err)
	}

	r.logger.Info().
		Str("tab_id", tab.ID.String()).
		Int("table_number", tab.TableNumber).
		Msg("tab opened")

	return nil
}

// GetTab retrieves a tab by its ID, or nil when absent.
func (r *tabRepository) GetTab(ctx context.Context, id uuid.UUID) (*model.Tab, error) {
	query := `
		SELECT id, table_number, status, opened_at, closed_at, total, item_count, payment_method
		FROM tabs
		WHERE id = $1
	`

	var t model.Tab
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.TableNumber,
		&t.Status,
		&t.OpenedAt,
		&t.ClosedAt,
		&t.Total,
		&t.ItemCount,
		&t.PaymentMethod,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("tab_id", id.String()).Msg("tab not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("tab_id", id.String()).Msg("failed to query tab")
		return nil, fmt.Errorf("failed to query tab: %w", err)
	}

	return &t, nil
}

// GetTabItems retrieves the tab's current line items in insertion order.
func (r *tabRepository) GetTabItems(ctx context.Context, tabID uuid.UUID) ([]model.TabItem, error) {
	query := `
		SELECT li.id, li.product_id, p.name, li.quantity, li.unit_price
		FROM line_items li
		JOIN products p ON p.id = li.product_id
		WHERE li.tab_id = $1
		ORDER BY li.created_at, li.id
	`

	rows, err := r.pool.Query(ctx, query, tabID)
	if err != nil {
		r.logger.Error().Err(err).Str("tab_id", tabID.String()).Msg("failed to query tab items")
		return nil, fmt.Errorf("failed to query tab items: %w", err)
	}
	defer rows.Close()

	items := []model.TabItem{}
	for rows.Next() {
		var item model.TabItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan tab item row")
			return nil, fmt.Errorf("failed to scan tab item: %w", err)
		}
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating tab item rows")
		return nil, fmt.Errorf("error iterating tab items: %w", err)
	}

	return items, nil
}

// AddItem inserts a line item and increments the tab's cached aggregate in
// one transaction. The tab row is locked first so a concurrent close or
// remove cannot interleave between the insert and the aggregate update.
func (r *tabRepository) AddItem(ctx context.Context, item *model.LineItem) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var status model.TabStatus
	err = tx.QueryRow(ctx, `SELECT status FROM tabs WHERE id = $1 FOR UPDATE`, item.TabID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrTabNotFound
		}
		r.logger.Error().Err(err).Str("tab_id", item.TabID.String()).Msg("failed to lock tab")
		return fmt.Errorf("failed to lock tab: %w", err)
	}

	if status != model.TabStatusOpen {
		r.logger.Debug().Str("tab_id", item.TabID.String()).Msg("cannot add item to a closed tab")
		return model.ErrTabClosed
	}

	insertQuery := `
		INSERT INTO line_items (id, tab_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.Exec(ctx, insertQuery, item.ID, item.TabID, item.ProductID, item.Quantity, item.UnitPrice)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Str("tab_id", item.TabID.String()).Msg("failed to insert line item")
		return fmt.Errorf("failed to insert line item: %w", err)
	}

	contribution := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	updateQuery := `
		UPDATE tabs
		SET total = total + $2, item_count = item_count + $3
		WHERE id = $1
	`
	_, err = tx.Exec(ctx, updateQuery, item.TabID, contribution, item.Quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("tab_id", item.TabID.String()).Msg("failed to update tab aggregate")
		return fmt.Errorf("failed to update tab aggregate: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("tab_id", item.TabID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Debug().
		Str("tab_id", item.TabID.String()).
		Str("line_item_id", item.ID.String()).
		Int("quantity", item.Quantity).
		Str("unit_price", item.UnitPrice.StringFixed(2)).
		Msg("line item added")

	return nil
}

// RemoveItem reverses the line item's contribution to the tab's cached
// aggregate and deletes it in one transaction. The aggregate is decremented
// before the delete; a result below zero means the cache diverged from the
// line items and the whole transaction is rolled back.
func (r *tabRepository) RemoveItem(ctx context.Context, tabID, itemID uuid.UUID) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Scoped lookup: an item id that exists under another tab is NotFound here.
	var quantity int
	var unitPrice decimal.Decimal
	selectQuery := `
		SELECT quantity, unit_price
		FROM line_items
		WHERE id = $1 AND tab_id = $2
		FOR UPDATE
	`
	err = tx.QueryRow(ctx, selectQuery, itemID, tabID).Scan(&quantity, &unitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrLineItemNotFound
		}
		r.logger.Error().Err(err).Str("line_item_id", itemID.String()).Msg("failed to lock line item")
		return fmt.Errorf("failed to lock line item: %w", err)
	}

	contribution := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	var newTotal decimal.Decimal
	var newCount int
	updateQuery := `
		UPDATE tabs
		SET total = total - $2, item_count = item_count - $3
		WHERE id = $1
		RETURNING total, item_count
	`
	err = tx.QueryRow(ctx, updateQuery, tabID, contribution, quantity).Scan(&newTotal, &newCount)
	if err != nil {
		if isPgError(err, pgCheckViolation) {
			r.logger.Error().
				Str("tab_id", tabID.String()).
				Str("line_item_id", itemID.String()).
				Msg("aggregate decrement violated non-negativity constraint")
			return model.ErrAggregateCorrupted
		}
		r.logger.Error().Err(err).Str("tab_id", tabID.String()).Msg("failed to decrement tab aggregate")
		return fmt.Errorf("failed to decrement tab aggregate: %w", err)
	}

	if newTotal.IsNegative() || newCount < 0 {
		err = model.ErrAggregateCorrupted
		r.logger.Error().
			Str("tab_id", tabID.String()).
			Str("new_total", newTotal.StringFixed(2)).
			Int("new_count", newCount).
			Msg("aggregate went negative, rolling back")
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM line_items WHERE id = $1`, itemID)
	if err != nil {
		r.logger.Error().Err(err).Str("line_item_id", itemID.String()).Msg("failed to delete line item")
		return fmt.Errorf("failed to delete line item: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("tab_id", tabID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Debug().
		Str("tab_id", tabID.String()).
		Str("line_item_id", itemID.String()).
		Msg("line item removed")

	return nil
}

// CloseTab transitions an open tab to closed. The status check is part of
// the update itself (affected-row count), not a pre-read, so two concurrent
// closes cannot both succeed.
func (r *tabRepository) CloseTab(ctx context.Context, id uuid.UUID, paymentMethod string, closedAt time.Time) error {
	query := `
		UPDATE tabs
		SET status = $2, closed_at = $3, payment_method = $4
		WHERE id = $1 AND status = $5
	`

	tag, err := r.pool.Exec(ctx, query, id, model.TabStatusClosed, closedAt, paymentMethod, model.TabStatusOpen)
	if err != nil {
		r.logger.Error().Err(err).Str("tab_id", id.String()).Msg("failed to close tab")
		return fmt.Errorf("failed to close tab: %w", err)
	}

	if tag.RowsAffected() == 0 {
		exists, err := r.tabExists(ctx, id)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrTabClosed
		}
		return model.ErrTabNotFound
	}

	r.logger.Info().
		Str("tab_id", id.String()).
		Str("payment_method", paymentMethod).
		Msg("tab closed")

	return nil
}

// ReopenTab transitions a closed tab back to open. Reopening an already-open
// tab is a no-op; reopening onto a table that meanwhile got another open tab
// loses against the partial unique index.
func (r *tabRepository) ReopenTab(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE tabs
		SET status = $2, closed_at = NULL, payment_method = NULL
		WHERE id = $1 AND status = $3
	`

	tag, err := r.pool.Exec(ctx, query, id, model.TabStatusOpen, model.TabStatusClosed)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			r.logger.Debug().Str("tab_id", id.String()).Msg("table already has another open tab")
			return model.ErrTableOccupied
		}
		r.logger.Error().Err(err).Str("tab_id", id.String()).Msg("failed to reopen tab")
		return fmt.Errorf("failed to reopen tab: %w", err)
	}

	if tag.RowsAffected() == 0 {
		exists, err := r.tabExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return model.ErrTabNotFound
		}
		// Already open.
		return nil
	}

	r.logger.Info().Str("tab_id", id.String()).Msg("tab reopened")

	return nil
}

// DeleteTab removes a tab; line items go with it via ON DELETE CASCADE.
func (r *tabRepository) DeleteTab(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tabs WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("tab_id", id.String()).Msg("failed to delete tab")
		return fmt.Errorf("failed to delete tab: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrTabNotFound
	}

	r.logger.Info().Str("tab_id", id.String()).Msg("tab deleted")

	return nil
}

// ListOpenTabs retrieves all open tabs ordered by table number.
func (r *tabRepository) ListOpenTabs(ctx context.Context) ([]model.Tab, error) {
	query := `
		SELECT id, table_number, status, opened_at, closed_at, total, item_count, payment_method
		FROM tabs
		WHERE status = $1
		ORDER BY table_number
	`

	rows, err := r.pool.Query(ctx, query, model.TabStatusOpen)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query open tabs")
		return nil, fmt.Errorf("failed to query open tabs: %w", err)
	}
	defer rows.Close()

	var tabs []model.Tab
	for rows.Next() {
		var t model.Tab
		err := rows.Scan(&t.ID, &t.TableNumber, &t.Status, &t.OpenedAt, &t.ClosedAt, &t.Total, &t.ItemCount, &t.PaymentMethod)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan tab row")
			return nil, fmt.Errorf("failed to scan tab: %w", err)
		}
		tabs = append(tabs, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating tab rows")
		return nil, fmt.Errorf("error iterating tabs: %w", err)
	}

	return tabs, nil
}

func (r *tabRepository) tabExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tabs WHERE id = $1)`, id).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("tab_id", id.String()).Msg("failed to probe tab existence")
		return false, fmt.Errorf("failed to probe tab: %w", err)
	}
	return exists, nil
}
