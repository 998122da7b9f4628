package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethodDinheiro is the cash payment method; every other method
// (cartao, pix) is reported under the combined card/pix bucket.
const PaymentMethodDinheiro = "dinheiro"

// RevenueReport is the revenue for one day split by payment method.
// All buckets default to 0.00 when no closed tabs match the period.
type RevenueReport struct {
	Date      string          `json:"date"`
	All       decimal.Decimal `json:"all"`
	Dinheiro  decimal.Decimal `json:"dinheiro"`
	CartaoPix decimal.Decimal `json:"cartaoPix"`
}

// TopProduct is one row of the top-products report: summed quantity across
// all line items ever recorded, joined through category.
type TopProduct struct {
	ProductID     uuid.UUID `json:"productId"`
	ProductName   string    `json:"productName"`
	CategoryName  string    `json:"categoryName"`
	TotalQuantity int       `json:"totalQuantity"`
}
