package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	TrainingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrm_training_transitions_total",
			Help: "Training application status transitions",
		},
		[]string{"to"},
	)

	EnrollmentOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrm_enrollment_operations_total",
			Help: "Enrollment ledger operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	CacheRepairs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrm_enrollment_cache_repairs_total",
			Help: "Cached enrolled counts rewritten by reconciliation",
		},
		[]string{"entity"},
	)

	EventFeedSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hrm_event_feed_subscribers",
			Help: "Open websocket event feed connections",
		},
	)

	EventFeedDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hrm_event_feed_dropped_total",
			Help: "Events dropped for slow feed subscribers",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(TrainingTransitions)
		prometheus.MustRegister(EnrollmentOperations)
		prometheus.MustRegister(CacheRepairs)
		prometheus.MustRegister(EventFeedSubscribers)
		prometheus.MustRegister(EventFeedDropped)
	})
}

// ObserveEnrollment counts one ledger operation.
func ObserveEnrollment(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EnrollmentOperations.WithLabelValues(operation, outcome).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
