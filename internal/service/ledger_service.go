package service

import (
	"context"
	"fmt"
	"time"

	"comanda-pos/internal/model"
	"comanda-pos/internal/normalize"
	"comanda-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PriceLookup is the narrow catalogue contract the ledger consumes: the
// current unit price of a product, captured by value into line items.
type PriceLookup interface {
	GetUnitPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
}

// ledgerService implements LedgerService.
type ledgerService struct {
	tabRepo repository.TabRepository
	prices  PriceLookup
	logger  zerolog.Logger
}

// NewLedgerService creates a new order ledger service.
func NewLedgerService(tabRepo repository.TabRepository, prices PriceLookup, logger zerolog.Logger) LedgerService {
	return &ledgerService{
		tabRepo: tabRepo,
		prices:  prices,
		logger:  logger.With().Str("service", "ledger").Logger(),
	}
}

// OpenTab opens a tab for a table. Uniqueness of the open tab per table is
// enforced by the storage layer; a losing race surfaces as a conflict.
func (s *ledgerService) OpenTab(ctx context.Context, req *model.OpenTabRequest) (*model.Tab, error) {
	if req == nil || req.TableNumber < 1 {
		return nil, model.ErrInvalidTableNumber
	}

	tab := &model.Tab{
		ID:          uuid.New(),
		TableNumber: req.TableNumber,
		Status:      model.TabStatusOpen,
		OpenedAt:    time.Now(),
		Total:       decimal.Zero,
		ItemCount:   0,
	}

	if err := s.tabRepo.OpenTab(ctx, tab); err != nil {
		return nil, err
	}

	return tab, nil
}

// GetTabDetail retrieves a tab with its current line items and cached total.
func (s *ledgerService) GetTabDetail(ctx context.Context, tabID uuid.UUID) (*model.TabDetail, error) {
	tab, err := s.tabRepo.GetTab(ctx, tabID)
	if err != nil {
		s.logger.Error().Err(err).Str("tab_id", tabID.String()).Msg("failed to get tab")
		return nil, fmt.Errorf("failed to get tab: %w", err)
	}

	if tab == nil {
		return nil, model.ErrTabNotFound
	}

	items, err := s.tabRepo.GetTabItems(ctx, tabID)
	if err != nil {
		s.logger.Error().Err(err).Str("tab_id", tabID.String()).Msg("failed to get tab items")
		return nil, fmt.Errorf("failed to get tab items: %w", err)
	}

	if items == nil {
		items = []model.TabItem{}
	}

	return &model.TabDetail{Tab: *tab, Items: items}, nil
}

// AddItem adds a product to a tab. The product's current unit price is read
// through the catalogue contract and captured into the line item; insert and
// aggregate increment happen in one storage transaction.
func (s *ledgerService) AddItem(ctx context.Context, tabID uuid.UUID, req *model.AddItemRequest) (*model.LineItem, error) {
	if err := s.validateAddItemRequest(req); err != nil {
		return nil, err
	}

	price, err := s.prices.GetUnitPrice(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	item := &model.LineItem{
		ID:        uuid.New(),
		TabID:     tabID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: price,
	}

	if err := s.tabRepo.AddItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("tab_id", tabID.String()).
		Str("product_id", req.ProductID.String()).
		Int("quantity", req.Quantity).
		Str("unit_price", price.StringFixed(2)).
		Msg("item added to tab")

	return item, nil
}

// RemoveItem removes a line item scoped to the given tab.
func (s *ledgerService) RemoveItem(ctx context.Context, tabID, itemID uuid.UUID) error {
	if err := s.tabRepo.RemoveItem(ctx, tabID, itemID); err != nil {
		return err
	}

	s.logger.Info().
		Str("tab_id", tabID.String()).
		Str("line_item_id", itemID.String()).
		Msg("item removed from tab")

	return nil
}

// CloseTab closes an open tab, recording the normalized payment method.
func (s *ledgerService) CloseTab(ctx context.Context, tabID uuid.UUID, req *model.CloseTabRequest) error {
	if req == nil {
		return model.ErrMissingPayment
	}

	method := normalize.Text(req.PaymentMethod)
	if method == "" {
		return model.ErrMissingPayment
	}

	if err := s.tabRepo.CloseTab(ctx, tabID, method, time.Now()); err != nil {
		return err
	}

	s.logger.Info().
		Str("tab_id", tabID.String()).
		Str("payment_method", method).
		Msg("tab closed")

	return nil
}

// ReopenTab reopens a closed tab; reopening an open tab is a no-op.
func (s *ledgerService) ReopenTab(ctx context.Context, tabID uuid.UUID) error {
	if err := s.tabRepo.ReopenTab(ctx, tabID); err != nil {
		return err
	}

	s.logger.Info().Str("tab_id", tabID.String()).Msg("tab reopened")

	return nil
}

// DeleteTab removes a tab and all its line items.
func (s *ledgerService) DeleteTab(ctx context.Context, tabID uuid.UUID) error {
	if err := s.tabRepo.DeleteTab(ctx, tabID); err != nil {
		return err
	}

	s.logger.Info().Str("tab_id", tabID.String()).Msg("tab deleted")

	return nil
}

// ListOpenTabs retrieves all open tabs ordered by table number.
func (s *ledgerService) ListOpenTabs(ctx context.Context) ([]model.Tab, error) {
	tabs, err := s.tabRepo.ListOpenTabs(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list open tabs")
		return nil, fmt.Errorf("failed to list open tabs: %w", err)
	}

	if tabs == nil {
		tabs = []model.Tab{}
	}

	return tabs, nil
}

// validateAddItemRequest validates an add-item request.
func (s *ledgerService) validateAddItemRequest(req *model.AddItemRequest) error {
	if req == nil || req.ProductID == uuid.Nil {
		return model.NewDomainError(model.KindValidation, model.ErrCodeMissingField, "Product ID is required")
	}

	if req.Quantity < 1 {
		s.logger.Warn().
			Str("product_id", req.ProductID.String()).
			Int("quantity", req.Quantity).
			Msg("invalid quantity")
		return model.ErrInvalidQuantity
	}

	return nil
}
