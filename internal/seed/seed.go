// Package seed populates the catalogue at startup from a gzipped CSV file,
// read either from the local file system or from S3. Seeding is additive:
// rows whose normalized product name already exists are skipped.
package seed

import (
	"context"

	"github.com/shopspring/decimal"
)

// Item is one catalogue row in a seed file. Column order follows the CSV
// header: name, description, price, category.
type Item struct {
	Name        string          `csv:"name"`
	Description string          `csv:"description"`
	Price       decimal.Decimal `csv:"price"`
	Category    string          `csv:"category"`
}

// Loader reads catalogue seed items from a gzipped CSV source. The source
// string is a file path for the file loader and an object key for the S3
// loader.
type Loader interface {
	Load(ctx context.Context, source string) ([]Item, error)
}
