package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tokopos/backend/internal/cache"
	"tokopos/backend/internal/domain"
	"tokopos/backend/internal/metrics"
	"tokopos/backend/internal/store"
	"tokopos/backend/internal/xid"
)

const (
	defaultLowStockThreshold = 10
	defaultDashboardTTL      = 30 * time.Second
)

// maxMoney is the largest amount a NUMERIC(12,2) column holds.
var maxMoney = decimal.RequireFromString("9999999999.99")

type Service struct {
	repo    store.Repository
	log     *zap.Logger
	metrics *metrics.Metrics

	dashboardCache    cache.DashboardCache
	dashboardTTL      time.Duration
	lowStockThreshold int

	totalPolicy string
	now         func() time.Time
	newID       func(prefix string) string
}

type Option func(*Service)

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithDashboardCache(c cache.DashboardCache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.dashboardCache = c
		}
		if ttl > 0 {
			s.dashboardTTL = ttl
		}
	}
}

func WithLowStockThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold >= 0 {
			s.lowStockThreshold = threshold
		}
	}
}

// WithTotalPolicy selects how RecordSale treats the caller-supplied total.
// Unknown values keep the default, verify.
func WithTotalPolicy(policy string) Option {
	return func(s *Service) {
		switch policy {
		case domain.TotalPolicyVerify, domain.TotalPolicyRecompute, domain.TotalPolicyTrust:
			s.totalPolicy = policy
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func(prefix string) string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func New(repo store.Repository, opts ...Option) *Service {
	s := &Service{
		repo:              repo,
		log:               zap.NewNop(),
		dashboardCache:    cache.NoopDashboardCache{},
		dashboardTTL:      defaultDashboardTTL,
		lowStockThreshold: defaultLowStockThreshold,
		totalPolicy:       domain.TotalPolicyVerify,
		now:               time.Now,
		newID:             xid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) TotalPolicy() string {
	return s.totalPolicy
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// invalidateDashboard drops the cached dashboard after a committed write. A
// cache failure is logged and never fails the write.
func (s *Service) invalidateDashboard(ctx context.Context) {
	if err := s.dashboardCache.Invalidate(ctx); err != nil {
		s.log.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func hasAtMostTwoDecimals(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
