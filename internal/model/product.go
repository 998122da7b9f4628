package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a sellable item in the catalogue. The price is the
// current unit price; line items capture their own copy at insertion time,
// so later price changes never touch existing tabs.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty" db:"category_id"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// ProductRequest represents the request payload for creating or fully
// replacing a product.
type ProductRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty"`
}
