package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SalesRecorded     prometheus.Counter
	SalesDeleted      prometheus.Counter
	UnitsSold         prometheus.Counter
	UnitsRestocked    prometheus.Counter
	LedgerFailures    *prometheus.CounterVec
	LedgerDuration    *prometheus.HistogramVec
	CatalogOperations *prometheus.CounterVec
	DashboardCache    *prometheus.CounterVec
}

func New(prefix string) *Metrics {
	if prefix == "" {
		prefix = "tokopos"
	}
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		SalesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_sales_recorded_total",
			Help: "Total number of sales committed",
		}),
		SalesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_sales_deleted_total",
			Help: "Total number of sales deleted and restocked",
		}),
		UnitsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_units_sold_total",
			Help: "Total quantity decremented from stock by sales",
		}),
		UnitsRestocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_units_restocked_total",
			Help: "Total quantity returned to stock by sale deletion",
		}),
		LedgerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_ledger_failures_total",
				Help: "Ledger transactions rejected or rolled back",
			},
			[]string{"operation", "reason"},
		),
		LedgerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_ledger_duration_seconds",
				Help:    "Duration of ledger transactions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CatalogOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_catalog_operations_total",
				Help: "Catalog writes by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		DashboardCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_dashboard_cache_total",
				Help: "Dashboard cache lookups by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SalesRecorded,
		m.SalesDeleted,
		m.UnitsSold,
		m.UnitsRestocked,
		m.LedgerFailures,
		m.LedgerDuration,
		m.CatalogOperations,
		m.DashboardCache,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, path, status string, started time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(started).Seconds())
}

// TrackLedger returns a function recording the duration of one ledger call.
func (m *Metrics) TrackLedger(operation string) func() {
	if m == nil {
		return func() {}
	}
	started := time.Now()
	return func() {
		m.LedgerDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	}
}

func (m *Metrics) SaleRecorded(units int) {
	if m == nil {
		return
	}
	m.SalesRecorded.Inc()
	m.UnitsSold.Add(float64(units))
}

func (m *Metrics) SaleDeleted(units int) {
	if m == nil {
		return
	}
	m.SalesDeleted.Inc()
	m.UnitsRestocked.Add(float64(units))
}

func (m *Metrics) LedgerFailure(operation, reason string) {
	if m == nil {
		return
	}
	m.LedgerFailures.WithLabelValues(operation, reason).Inc()
}

func (m *Metrics) CatalogOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.CatalogOperations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) DashboardCacheResult(result string) {
	if m == nil {
		return
	}
	m.DashboardCache.WithLabelValues(result).Inc()
}
