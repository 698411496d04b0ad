package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "contract_ledger_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	reportBuildTotal   *prometheus.CounterVec
	reportBuildLatency *prometheus.HistogramVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec

	ledgerFetchTotal   *prometheus.CounterVec
	ledgerFetchLatency *prometheus.HistogramVec
	ledgerCacheEntries prometheus.Gauge

	malformedPeriods prometheus.Counter
)

// Init registers report metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		reportBuildTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_build_total",
				Help: "Total report matrix builds by view and result",
			},
			[]string{"view", "result"},
		)
		reportBuildLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_build_latency_seconds",
				Help:    "Report build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"view", "result"},
		)
		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		ledgerFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_fetch_total",
				Help: "Total charge entry fetches by result",
			},
			[]string{"result"},
		)
		ledgerFetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ledger_fetch_latency_seconds",
				Help:    "Charge entry fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		ledgerCacheEntries = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "ledger_cache_periods",
				Help: "Periods with cached charge entries",
			},
		)
		malformedPeriods = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "malformed_periods_total",
				Help: "Periods read with unparseable dates",
			},
		)

		prometheus.MustRegister(
			reportBuildTotal,
			reportBuildLatency,
			reportExportTotal,
			reportExportLatency,
			ledgerFetchTotal,
			ledgerFetchLatency,
			ledgerCacheEntries,
			malformedPeriods,
		)
	})
}

// ObserveReportBuild records build latency and result for a view.
func ObserveReportBuild(view, result string, duration time.Duration) {
	if view == "" {
		view = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportBuildTotal != nil {
		reportBuildTotal.WithLabelValues(view, result).Inc()
	}
	if reportBuildLatency != nil {
		reportBuildLatency.WithLabelValues(view, result).Observe(duration.Seconds())
	}
}

// ObserveReportExport records export latency and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveLedgerFetch records one charge entry fetch.
func ObserveLedgerFetch(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ledgerFetchTotal != nil {
		ledgerFetchTotal.WithLabelValues(result).Inc()
	}
	if ledgerFetchLatency != nil {
		ledgerFetchLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// SetLedgerCacheSize sets the cached period gauge.
func SetLedgerCacheSize(periods int) {
	if periods < 0 {
		periods = 0
	}
	if ledgerCacheEntries != nil {
		ledgerCacheEntries.Set(float64(periods))
	}
}

// IncMalformedPeriod counts a period with unusable dates.
func IncMalformedPeriod() {
	if malformedPeriods != nil {
		malformedPeriods.Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
