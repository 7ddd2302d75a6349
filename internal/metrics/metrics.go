// Package metrics exposes the Prometheus collectors of the API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Domain metrics
	TokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
		[]string{"grant_type"},
	)

	RecipesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_recipes_published_total",
			Help: "Total number of recipes created",
		},
	)

	ShoppingListDownloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Total number of shopping lists rendered",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordTokenIssued counts an access token issued through grantType.
func RecordTokenIssued(grantType string) {
	TokensIssued.WithLabelValues(grantType).Inc()
}

func RecordRecipePublished() {
	RecipesPublished.Inc()
}

func RecordShoppingListDownload() {
	ShoppingListDownloads.Inc()
}
