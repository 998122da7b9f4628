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
)

// catalogService implements CatalogService.
type catalogService struct {
	catalogRepo repository.CatalogRepository
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(catalogRepo repository.CatalogRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// CreateCategory registers a new category with a normalized, unique name.
func (s *catalogService) CreateCategory(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	name, err := s.validateCategoryRequest(req)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.catalogRepo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("category_id", category.ID.String()).
		Str("name", category.Name).
		Msg("category created")

	return category, nil
}

// ListCategories retrieves all categories.
func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.catalogRepo.ListCategories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if categories == nil {
		categories = []model.Category{}
	}

	return categories, nil
}

// UpdateCategory renames a category.
func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *model.CategoryRequest) (*model.Category, error) {
	name, err := s.validateCategoryRequest(req)
	if err != nil {
		return nil, err
	}

	category := &model.Category{ID: id, Name: name}
	if err := s.catalogRepo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("category_id", id.String()).
		Str("name", name).
		Msg("category updated")

	return category, nil
}

// DeleteCategory removes a category; blocked while products reference it.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.catalogRepo.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("category_id", id.String()).Msg("category deleted")

	return nil
}

// CreateProduct registers a new product with normalized text fields.
func (s *catalogService) CreateProduct(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if err := s.validateProductRequest(req); err != nil {
		return nil, err
	}

	product := &model.Product{
		ID:          uuid.New(),
		Name:        normalize.Text(req.Name),
		Description: normalize.TextPtr(req.Description),
		Price:       req.Price.Round(2),
		CategoryID:  req.CategoryID,
		CreatedAt:   time.Now(),
	}

	if err := s.catalogRepo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("name", product.Name).
		Str("price", product.Price.StringFixed(2)).
		Msg("product created")

	return product, nil
}

// ListProducts retrieves all products.
func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.catalogRepo.ListProducts(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if products == nil {
		products = []model.Product{}
	}

	return products, nil
}

// GetProduct retrieves a single product by ID.
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.catalogRepo.GetProduct(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// UpdateProduct fully replaces a product's mutable fields. Prices already
// captured into line items are unaffected.
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *model.ProductRequest) (*model.Product, error) {
	if err := s.validateProductRequest(req); err != nil {
		return nil, err
	}

	product := &model.Product{
		ID:          id,
		Name:        normalize.Text(req.Name),
		Description: normalize.TextPtr(req.Description),
		Price:       req.Price.Round(2),
		CategoryID:  req.CategoryID,
	}

	if err := s.catalogRepo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Str("price", product.Price.StringFixed(2)).
		Msg("product updated")

	return product, nil
}

// DeleteProduct removes a product; blocked while line items reference it.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.catalogRepo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")

	return nil
}

// validateCategoryRequest validates and normalizes a category request,
// returning the stored name.
func (s *catalogService) validateCategoryRequest(req *model.CategoryRequest) (string, error) {
	if req == nil {
		return "", model.ErrMissingName
	}

	name := normalize.Text(req.Name)
	if name == "" {
		return "", model.ErrMissingName
	}

	return name, nil
}

// validateProductRequest validates a product request.
func (s *catalogService) validateProductRequest(req *model.ProductRequest) error {
	if req == nil {
		return model.ErrMissingName
	}

	if normalize.Text(req.Name) == "" {
		return model.ErrMissingName
	}

	if !req.Price.IsPositive() {
		s.logger.Warn().
			Str("name", req.Name).
			Str("price", req.Price.String()).
			Msg("invalid product price")
		return model.ErrInvalidPrice
	}

	return nil
}
