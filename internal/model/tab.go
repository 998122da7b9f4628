package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TabStatus is the lifecycle state of a tab.
type TabStatus string

const (
	TabStatusOpen   TabStatus = "open"
	TabStatusClosed TabStatus = "closed"
)

// Tab represents an open-ended order (comanda) tied to a table. Total and
// ItemCount are denormalised caches maintained incrementally by every line
// item mutation; they are never recomputed on read.
type Tab struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	TableNumber   int             `json:"tableNumber" db:"table_number"`
	Status        TabStatus       `json:"status" db:"status"`
	OpenedAt      time.Time       `json:"openedAt" db:"opened_at"`
	ClosedAt      *time.Time      `json:"closedAt,omitempty" db:"closed_at"`
	Total         decimal.Decimal `json:"total" db:"total"`
	ItemCount     int             `json:"itemCount" db:"item_count"`
	PaymentMethod *string         `json:"paymentMethod,omitempty" db:"payment_method"`
}

// LineItem is one quantity-priced addition of a product to a tab.
// UnitPrice is the product price captured when the item was added.
type LineItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	TabID     uuid.UUID       `json:"tabId" db:"tab_id"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// OpenTabRequest represents the request payload for opening a tab.
type OpenTabRequest struct {
	TableNumber int `json:"tableNumber"`
}

// AddItemRequest represents the request payload for adding a line item to a tab.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// CloseTabRequest represents the request payload for closing a tab.
type CloseTabRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// TabItem is a line item enriched with the product name for tab detail views.
type TabItem struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// TabDetail is a tab together with its current line items in insertion order.
type TabDetail struct {
	Tab
	Items []TabItem `json:"items"`
}
