package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LoginAttemptsTotal counts login attempts by result (success, invalid, error).
	LoginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	// FeedItemsCreatedTotal counts status updates posted.
	FeedItemsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_items_created_total",
			Help: "Total number of feed items created",
		},
	)

	// RevokedTokensPruned counts in-memory denylist entries dropped after expiry.
	RevokedTokensPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "revoked_tokens_pruned_total",
			Help: "Total number of expired revoked-token entries pruned",
		},
	)
)

// Login results.
const (
	LoginSuccess = "success"
	LoginInvalid = "invalid"
	LoginError   = "error"
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, LoginAttemptsTotal, FeedItemsCreatedTotal, RevokedTokensPruned)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /api/profile/123 -> /api/profile/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncLogin increments the login counter for result.
func IncLogin(result string) {
	LoginAttemptsTotal.WithLabelValues(result).Inc()
}

func IncFeedItemsCreated() {
	FeedItemsCreatedTotal.Inc()
}

func AddRevokedTokensPruned(n int) {
	RevokedTokensPruned.Add(float64(n))
}
