package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tokopos/backend/internal/domain"
)

func TestNoopDashboardCacheNeverHits(t *testing.T) {
	c := NoopDashboardCache{}
	ctx := context.Background()

	if err := c.Set(ctx, &domain.Dashboard{SalesCount: 3}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, err := c.Get(ctx); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
}

func TestRedisDashboardCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("TOKOPOS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TOKOPOS_TEST_REDIS_ADDR to run redis integration test")
	}

	ctx := context.Background()
	c := NewRedisDashboardCache(addr, "", 0)
	c.key = DashboardKey + ":test"
	t.Cleanup(func() {
		_ = c.Invalidate(ctx)
		_ = c.Close()
	})
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	want := &domain.Dashboard{
		TotalRevenue: decimal.RequireFromString("157.50"),
		SalesCount:   5,
		DailyRevenue: []domain.DailyRevenue{{Date: "2023-10-26", Total: decimal.RequireFromString("57")}},
	}
	if err := c.Set(ctx, want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !got.TotalRevenue.Equal(want.TotalRevenue) || got.SalesCount != 5 || len(got.DailyRevenue) != 1 {
		t.Fatalf("unexpected cached dashboard: %+v", got)
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, err := c.Get(ctx); err != nil || ok {
		t.Fatalf("expected miss after invalidate, got ok=%v err=%v", ok, err)
	}
}
