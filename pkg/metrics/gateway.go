package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records remote-store traffic and cache behavior.
type GatewayMetrics struct {
	callDuration *prometheus.HistogramVec
	callErrors   *prometheus.CounterVec
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	retries      *prometheus.CounterVec
	transactions *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	callDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sheets_call_duration_seconds",
		Help:    "Duration of remote spreadsheet calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	callErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheets_call_errors",
		Help: "Remote spreadsheet calls that failed after retries.",
	}, []string{"op"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_hits",
		Help: "Catalog reads served from cache.",
	}, []string{"collection"})
	cacheMisses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_misses",
		Help: "Catalog reads that required a remote fetch.",
	}, []string{"collection"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheets_call_retries",
		Help: "Retry attempts triggered by rate-limit errors.",
	}, []string{"op"})
	transactions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transactions_appended",
		Help: "Transaction append outcomes.",
	}, []string{"result"})
	reg.MustRegister(callDuration, callErrors, cacheHits, cacheMisses, retries, transactions)
	return &GatewayMetrics{
		callDuration: callDuration,
		callErrors:   callErrors,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
		retries:      retries,
		transactions: transactions,
	}
}

// ObserveCall records the duration for the named remote operation.
func (g *GatewayMetrics) ObserveCall(op string, duration time.Duration) {
	if g == nil || g.callDuration == nil {
		return
	}
	g.callDuration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncCallError increments the failure counter for the named operation.
func (g *GatewayMetrics) IncCallError(op string) {
	if g == nil || g.callErrors == nil {
		return
	}
	g.callErrors.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncCacheHit increments the hit counter for a cached collection.
func (g *GatewayMetrics) IncCacheHit(collection string) {
	if g == nil || g.cacheHits == nil {
		return
	}
	g.cacheHits.WithLabelValues(normalizeLabel(collection)).Inc()
}

// IncCacheMiss increments the miss counter for a cached collection.
func (g *GatewayMetrics) IncCacheMiss(collection string) {
	if g == nil || g.cacheMisses == nil {
		return
	}
	g.cacheMisses.WithLabelValues(normalizeLabel(collection)).Inc()
}

// IncRetry increments the retry counter for the named operation.
func (g *GatewayMetrics) IncRetry(op string) {
	if g == nil || g.retries == nil {
		return
	}
	g.retries.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncTransaction records one append outcome ("ok" or "failed").
func (g *GatewayMetrics) IncTransaction(result string) {
	if g == nil || g.transactions == nil {
		return
	}
	g.transactions.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return strings.ReplaceAll(trimmed, " ", "_")
}
