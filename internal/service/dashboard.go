package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tokopos/backend/internal/domain"
)

// Dashboard summarizes revenue and stock. Results are served from the
// dashboard cache until a write invalidates it or the TTL expires.
func (s *Service) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	cached, ok, err := s.dashboardCache.Get(ctx)
	if err != nil {
		s.log.Warn("dashboard cache read failed", zap.Error(err))
	}
	if ok && cached != nil {
		s.metrics.DashboardCacheResult("hit")
		return *cached, nil
	}
	s.metrics.DashboardCacheResult("miss")

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}

	dashboard := buildDashboard(products, sales, s.lowStockThreshold)
	dashboard.GeneratedAt = s.timestamp()

	if err := s.dashboardCache.Set(ctx, &dashboard, s.dashboardTTL); err != nil {
		s.log.Warn("dashboard cache write failed", zap.Error(err))
	}
	return dashboard, nil
}

func buildDashboard(products []domain.Product, sales []domain.Sale, lowStockThreshold int) domain.Dashboard {
	dashboard := domain.Dashboard{
		TotalRevenue: decimal.Zero,
		SalesCount:   len(sales),
		ProductCount: len(products),
		DailyRevenue: []domain.DailyRevenue{},
	}

	for _, p := range products {
		if p.Stock <= lowStockThreshold {
			dashboard.LowStockCount++
		}
	}

	byDay := make(map[string]decimal.Decimal)
	for _, sale := range sales {
		dashboard.TotalRevenue = dashboard.TotalRevenue.Add(sale.Total)
		day := sale.Date.UTC().Format("2006-01-02")
		byDay[day] = byDay[day].Add(sale.Total)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		dashboard.DailyRevenue = append(dashboard.DailyRevenue, domain.DailyRevenue{Date: day, Total: byDay[day]})
	}

	return dashboard
}
