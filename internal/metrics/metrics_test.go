package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLedgerCounters(t *testing.T) {
	m := New("test")

	m.SaleRecorded(3)
	m.SaleRecorded(2)
	m.SaleDeleted(2)
	m.LedgerFailure("record_sale", "insufficient_stock")

	if got := testutil.ToFloat64(m.SalesRecorded); got != 2 {
		t.Fatalf("expected 2 recorded sales, got %v", got)
	}
	if got := testutil.ToFloat64(m.UnitsSold); got != 5 {
		t.Fatalf("expected 5 units sold, got %v", got)
	}
	if got := testutil.ToFloat64(m.UnitsRestocked); got != 2 {
		t.Fatalf("expected 2 units restocked, got %v", got)
	}
	if got := testutil.ToFloat64(m.LedgerFailures.WithLabelValues("record_sale", "insufficient_stock")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.SaleRecorded(1)
	m.SaleDeleted(1)
	m.LedgerFailure("delete_sale", "not_found")
	m.CatalogOperation("create", "ok")
	m.DashboardCacheResult("hit")
	m.ObserveHTTP(http.MethodGet, "/healthz", "200", time.Now())
	m.TrackLedger("record_sale")()
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New("tokopos")
	m.ObserveHTTP(http.MethodGet, "/healthz", "200", time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "tokopos_http_requests_total") {
		t.Fatalf("expected http counter in exposition")
	}
}
