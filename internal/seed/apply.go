package seed

import (
	"context"
	"fmt"

	"comanda-pos/internal/model"
	"comanda-pos/internal/normalize"
	"comanda-pos/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Apply inserts the seed items through the catalogue service so the same
// validation and normalization rules apply as for API writes. Items whose
// normalized name already exists are skipped; categories are created on
// first reference.
func Apply(ctx context.Context, catalog service.CatalogService, items []Item, logger zerolog.Logger) error {
	logger = logger.With().Str("component", "seed").Logger()

	existing, err := catalog.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list products before seeding: %w", err)
	}
	haveProduct := make(map[string]bool, len(existing))
	for _, p := range existing {
		haveProduct[p.Name] = true
	}

	categories, err := catalog.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories before seeding: %w", err)
	}
	categoryID := make(map[string]uuid.UUID, len(categories))
	for _, c := range categories {
		categoryID[c.Name] = c.ID
	}

	created, skipped := 0, 0
	for _, item := range items {
		name := normalize.Text(item.Name)
		if name == "" {
			logger.Warn().Msg("skipping seed item with empty name")
			skipped++
			continue
		}
		if haveProduct[name] {
			skipped++
			continue
		}

		var catID *uuid.UUID
		if catName := normalize.Text(item.Category); catName != "" {
			id, ok := categoryID[catName]
			if !ok {
				category, err := catalog.CreateCategory(ctx, &model.CategoryRequest{Name: item.Category})
				if err != nil {
					return fmt.Errorf("failed to seed category %q: %w", catName, err)
				}
				id = category.ID
				categoryID[catName] = id
			}
			catID = &id
		}

		req := &model.ProductRequest{
			Name:       item.Name,
			Price:      item.Price,
			CategoryID: catID,
		}
		if item.Description != "" {
			desc := item.Description
			req.Description = &desc
		}

		if _, err := catalog.CreateProduct(ctx, req); err != nil {
			return fmt.Errorf("failed to seed product %q: %w", name, err)
		}
		haveProduct[name] = true
		created++
	}

	logger.Info().
		Int("created", created).
		Int("skipped", skipped).
		Msg("catalogue seeding completed")

	return nil
}
