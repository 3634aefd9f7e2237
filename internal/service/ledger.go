package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tokopos/backend/internal/domain"
	"tokopos/backend/internal/store"
)

const (
	opRecordSale = "record_sale"
	opDeleteSale = "delete_sale"
)

// RecordSale validates the request, applies the total policy and commits the
// sale with its stock decrements as one store transaction.
func (s *Service) RecordSale(ctx context.Context, req domain.RecordSaleRequest) (domain.RecordSaleResponse, error) {
	defer s.metrics.TrackLedger(opRecordSale)()

	items, total, err := s.prepareSale(req)
	if err != nil {
		s.metrics.LedgerFailure(opRecordSale, "validation")
		s.log.Warn("sale rejected", zap.Error(err))
		return domain.RecordSaleResponse{}, err
	}

	sale := domain.Sale{
		ID:    s.newID("s"),
		Date:  s.timestamp(),
		Total: total,
		Items: items,
	}

	recorded, err := s.repo.RecordSale(ctx, sale)
	if err != nil {
		var stockErr *store.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			s.metrics.LedgerFailure(opRecordSale, "insufficient_stock")
			s.log.Warn("sale rejected: insufficient stock",
				zap.String("product_id", stockErr.ProductID),
				zap.Int("available", stockErr.Available),
				zap.Int("requested", stockErr.Requested),
				zap.Bool("missing", stockErr.Missing),
			)
			return domain.RecordSaleResponse{}, err
		case errors.Is(err, store.ErrInsufficientStock), errors.Is(err, store.ErrValidation):
			s.metrics.LedgerFailure(opRecordSale, "rejected")
			return domain.RecordSaleResponse{}, err
		default:
			s.metrics.LedgerFailure(opRecordSale, "store_error")
			s.log.Error("sale rolled back", zap.String("sale_id", sale.ID), zap.Error(err))
			return domain.RecordSaleResponse{}, fmt.Errorf("record sale: %w", err)
		}
	}

	units := 0
	for _, item := range recorded.Items {
		units += item.Quantity
	}
	s.metrics.SaleRecorded(units)
	s.invalidateDashboard(ctx)
	s.log.Info("sale recorded",
		zap.String("sale_id", recorded.ID),
		zap.Int("items", len(recorded.Items)),
		zap.Int("units", units),
		zap.String("total", recorded.Total.StringFixed(2)),
	)

	return domain.RecordSaleResponse{SaleID: recorded.ID}, nil
}

func (s *Service) prepareSale(req domain.RecordSaleRequest) ([]domain.SaleItem, decimal.Decimal, error) {
	verr := store.NewValidationError()

	if len(req.Items) == 0 {
		verr.Add("items", "At least one item is required.")
	}

	items := make([]domain.SaleItem, 0, len(req.Items))
	for i, in := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		productID := strings.TrimSpace(in.ProductID)
		if productID == "" {
			verr.Add(field+".product_id", "Product is required.")
		}
		if in.Quantity < 1 {
			verr.Add(field+".quantity", "Quantity must be at least 1.")
		}
		switch {
		case !in.SalePrice.IsPositive():
			verr.Add(field+".sale_price", "Sale price must be greater than 0.")
		case !hasAtMostTwoDecimals(in.SalePrice) || in.SalePrice.GreaterThan(maxMoney):
			verr.Add(field+".sale_price", "Sale price must be a valid amount with at most 2 decimals.")
		}

		items = append(items, domain.SaleItem{
			ProductID:   productID,
			ProductName: strings.TrimSpace(in.ProductName),
			Quantity:    in.Quantity,
			SalePrice:   in.SalePrice,
		})
	}

	total := req.Total
	switch {
	case total.IsNegative():
		verr.Add("total", "Total must not be negative.")
	case !hasAtMostTwoDecimals(total) || total.GreaterThan(maxMoney):
		verr.Add("total", "Total must be a valid amount with at most 2 decimals.")
	}

	if verr.HasErrors() {
		return nil, decimal.Zero, verr
	}

	sum := domain.SumItems(items)
	switch s.totalPolicy {
	case domain.TotalPolicyRecompute:
		total = sum
	case domain.TotalPolicyTrust:
	default:
		if !total.Equal(sum) {
			verr.Add("total", fmt.Sprintf("Total does not match the sum of items (expected %s).", sum.StringFixed(2)))
			return nil, decimal.Zero, verr
		}
	}
	if total.GreaterThan(maxMoney) {
		verr.Add("total", "Total is too large.")
		return nil, decimal.Zero, verr
	}

	return items, total, nil
}

// DeleteSale restores the recorded quantities to stock and removes the sale.
func (s *Service) DeleteSale(ctx context.Context, saleID string) error {
	defer s.metrics.TrackLedger(opDeleteSale)()

	saleID = strings.TrimSpace(saleID)
	if saleID == "" {
		s.metrics.LedgerFailure(opDeleteSale, "not_found")
		return store.ErrNotFound
	}

	sale, orphaned, err := s.repo.DeleteSale(ctx, saleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.LedgerFailure(opDeleteSale, "not_found")
			return err
		}
		s.metrics.LedgerFailure(opDeleteSale, "store_error")
		s.log.Error("sale deletion rolled back", zap.String("sale_id", saleID), zap.Error(err))
		return fmt.Errorf("delete sale: %w", err)
	}

	for _, productID := range orphaned {
		s.log.Warn("restock skipped: product no longer exists",
			zap.String("sale_id", saleID),
			zap.String("product_id", productID),
		)
	}

	skipped := make(map[string]struct{}, len(orphaned))
	for _, id := range orphaned {
		skipped[id] = struct{}{}
	}
	units := 0
	for _, item := range sale.Items {
		if _, ok := skipped[item.ProductID]; !ok {
			units += item.Quantity
		}
	}
	s.metrics.SaleDeleted(units)
	s.invalidateDashboard(ctx)
	s.log.Info("sale deleted",
		zap.String("sale_id", saleID),
		zap.Int("items", len(sale.Items)),
		zap.Int("units_restocked", units),
	)
	return nil
}
