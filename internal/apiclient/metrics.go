package apiclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// statusUnreachable — метка статуса, когда ответа от API не было.
const statusUnreachable = "unreachable"

// Prometheus-метрики запросов к API.
var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rd_api_requests_total",
			Help: "Общее количество запросов к API кредитного риска",
		},
		[]string{"resource", "method", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rd_api_request_duration_seconds",
			Help:    "Длительность запросов к API кредитного риска в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "method"},
	)
)

func observeRequest(resource, method, status string, start time.Time) {
	apiRequestsTotal.WithLabelValues(resource, method, status).Inc()
	apiRequestDuration.WithLabelValues(resource, method).Observe(time.Since(start).Seconds())
}
