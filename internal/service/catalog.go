package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tokopos/backend/internal/domain"
	"tokopos/backend/internal/store"
)

// ListProducts returns the catalog ordered by name. A non-empty query keeps
// products whose name or barcode contains it, ignoring case.
func (s *Service) ListProducts(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products, nil
	}

	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) || strings.Contains(strings.ToLower(p.Barcode), query) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, store.ErrNotFound
	}
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) AddProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error) {
	input = normalizeProductInput(input)
	if err := validateProductInput(input); err != nil {
		s.metrics.CatalogOperation("create", "invalid")
		return domain.Product{}, err
	}

	product := productFromInput(s.newID("p"), input)
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		s.metrics.CatalogOperation("create", outcome(err))
		return domain.Product{}, err
	}

	s.metrics.CatalogOperation("create", "ok")
	s.invalidateDashboard(ctx)
	s.log.Info("product created", zap.String("product_id", created.ID), zap.String("barcode", created.Barcode))
	return *created, nil
}

// UpdateProduct replaces every editable field of an existing product,
// including its stock level.
func (s *Service) UpdateProduct(ctx context.Context, id string, input domain.ProductInput) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, store.ErrNotFound
	}

	input = normalizeProductInput(input)
	if err := validateProductInput(input); err != nil {
		s.metrics.CatalogOperation("update", "invalid")
		return domain.Product{}, err
	}

	updated, err := s.repo.UpdateProduct(ctx, productFromInput(id, input))
	if err != nil {
		s.metrics.CatalogOperation("update", outcome(err))
		return domain.Product{}, err
	}

	s.metrics.CatalogOperation("update", "ok")
	s.invalidateDashboard(ctx)
	s.log.Info("product updated", zap.String("product_id", updated.ID), zap.Int("stock", updated.Stock))
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrNotFound
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		s.metrics.CatalogOperation("delete", outcome(err))
		return err
	}

	s.metrics.CatalogOperation("delete", "ok")
	s.invalidateDashboard(ctx)
	s.log.Info("product deleted", zap.String("product_id", id))
	return nil
}

func normalizeProductInput(input domain.ProductInput) domain.ProductInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Barcode = strings.TrimSpace(input.Barcode)
	return input
}

func validateProductInput(input domain.ProductInput) error {
	verr := store.NewValidationError()

	if input.Name == "" {
		verr.Add("name", "Name is required.")
	}
	if input.Barcode == "" {
		verr.Add("barcode", "Barcode is required.")
	}
	validatePrice(verr, "purchase_price", "Purchase price", input.PurchasePrice)
	validatePrice(verr, "sale_price", "Sale price", input.SalePrice)
	if input.Stock < 0 {
		verr.Add("stock", "Stock must not be negative.")
	}

	return verr.OrNil()
}

func validatePrice(verr *store.ValidationError, field string, label string, price decimal.Decimal) {
	switch {
	case !price.IsPositive():
		verr.Add(field, label+" must be greater than 0.")
	case !hasAtMostTwoDecimals(price):
		verr.Add(field, label+" must have at most 2 decimals.")
	case price.GreaterThan(maxMoney):
		verr.Add(field, label+" is too large.")
	}
}

func productFromInput(id string, input domain.ProductInput) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          input.Name,
		Barcode:       input.Barcode,
		PurchasePrice: input.PurchasePrice,
		SalePrice:     input.SalePrice,
		Stock:         input.Stock,
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, store.ErrDuplicateBarcode):
		return "duplicate_barcode"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrProductInUse):
		return "in_use"
	case errors.Is(err, store.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
