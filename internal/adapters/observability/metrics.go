package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"propiedades/internal/domain"
)

const namespace = "propiedades"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	ListingsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "listings_processed_total", Help: "Listings by ingestion outcome."},
		[]string{"outcome"},
	)
	QualityScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "record_quality_score",
			Help:    "Total quality score of assembled records.",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)
	FieldExtractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "field_extractions_total", Help: "Per-field extraction hits and misses."},
		[]string{"field", "result"}, // result: found|missing
	)
)

// Serve exposes reg on a dedicated listener when METRICS_ADDR is set.
func Serve(reg *prometheus.Registry) {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		ListingsProcessed, QualityScore, FieldExtractions)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

// ObserveOutcome records one processed listing. It matches the ingestion
// service's per-listing callback.
func ObserveOutcome(kind string, out domain.Outcome) {
	ListingsProcessed.WithLabelValues(kind).Inc()
	rec := out.Record
	if rec == nil {
		return
	}
	QualityScore.Observe(rec.Quality.Total)

	c := rec.Characteristics
	fields := []struct {
		name  string
		found bool
	}{
		{"price", rec.Price.Value != nil},
		{"operation_type", c.OperationType != domain.OperationUnknown},
		{"property_type", c.PropertyType != domain.PropertyOther},
		{"city", rec.Location.City != nil},
		{"neighborhood", rec.Location.Neighborhood != nil},
		{"street", rec.Location.Street != nil},
		{"bedrooms", c.Bedrooms != nil},
		{"bathrooms", c.Bathrooms != nil},
		{"built_area", c.BuiltAreaM2 != nil},
		{"lot_area", c.LotAreaM2 != nil},
		{"parking", c.ParkingSpots != nil},
		{"seller_phone", rec.Seller.Phone != ""},
	}
	for _, f := range fields {
		FieldExtractions.WithLabelValues(f.name, result(f.found)).Inc()
	}
}

func result(found bool) string {
	if found {
		return "found"
	}
	return "missing"
}
