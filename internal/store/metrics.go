package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты операций в метриках.
const (
	resultSuccess = "success"
	resultError   = "error"
	resultBusy    = "busy"
)

// Prometheus-метрики операций Store.
var (
	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rd_store_operations_total",
			Help: "Общее количество операций хранилищ коллекций",
		},
		[]string{"store", "operation", "result"},
	)

	storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rd_store_operation_duration_seconds",
			Help:    "Длительность операций хранилищ коллекций в секундах (включая запрос к API)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)
)

// observe записывает результат и длительность операции.
func (s *Store[T, C, U]) observe(op string, start time.Time, err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	storeOperationsTotal.WithLabelValues(s.name, op, result).Inc()
	storeOperationDuration.WithLabelValues(s.name, op).Observe(time.Since(start).Seconds())
}
