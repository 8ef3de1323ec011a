package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskboard_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_cache_lookups_total",
		Help: "Cache lookups by result (hit or miss)",
	}, []string{"result"})

	taskMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_task_mutations_total",
		Help: "Committed task mutations by event type",
	}, []string{"type"})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_notifications_total",
		Help: "Notification attempts by channel and result",
	}, []string{"channel", "result"})

	subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskboard_realtime_subscribers",
		Help: "Number of currently connected real-time subscribers",
	})

	authDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_authorization_denials_total",
		Help: "Authorization denials by operation",
	}, []string{"operation"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveCacheLookup records a cache lookup result ("hit" or "miss")
func ObserveCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// ObserveMutation records a committed task mutation
func ObserveMutation(eventType string) {
	taskMutations.WithLabelValues(eventType).Inc()
}

// ObserveNotification records a notification attempt per channel
func ObserveNotification(channel, result string) {
	notifications.WithLabelValues(channel, result).Inc()
}

// ObserveDenial records an authorization denial
func ObserveDenial(operation string) {
	authDenials.WithLabelValues(operation).Inc()
}

// SubscriberConnected increments the subscriber gauge
func SubscriberConnected() {
	subscribers.Inc()
}

// SubscriberDisconnected decrements the subscriber gauge
func SubscriberDisconnected() {
	subscribers.Dec()
}
