package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codechat_http_requests_total",
			Help: "Total number of HTTP requests processed by the service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codechat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "codechat_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codechat_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codechat_executions_total",
			Help: "Total number of code execution requests by engine and outcome.",
		},
		[]string{"engine", "outcome"},
	)
	executionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codechat_execution_duration_seconds",
			Help:    "Round-trip latency of external engine calls in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"engine"},
	)
	terminalSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "codechat_terminal_sessions",
			Help: "Number of live interactive terminal sessions.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "codechat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		executionsTotal,
		executionDuration,
		terminalSessions,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

// ObserveExecution records one external engine round trip. Outcome is one of
// "success", "compile_error", "runtime_error" or "transport_error".
func ObserveExecution(engine, outcome string, duration time.Duration) {
	executionsTotal.WithLabelValues(engine, outcome).Inc()
	executionDuration.WithLabelValues(engine).Observe(duration.Seconds())
}

func SetTerminalSessions(count int) {
	terminalSessions.Set(float64(count))
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
