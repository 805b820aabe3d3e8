// Package handlers отдаёт служебные маршруты riskdesk: /health/live,
// /health/ready и /metrics.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/riskdesk/internal/config"
)

// ServiceName — имя сервиса в ответах health.
const ServiceName = "riskdesk"

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusFail     = "fail"
)

// ReadinessChecker сообщает готовность API кредитного риска:
// статус ok, degraded или fail и пояснение.
type ReadinessChecker interface {
	CheckReady() (status string, message string)
}

// HealthHandler обслуживает /health/* и /metrics.
type HealthHandler struct {
	apiChecker  ReadinessChecker
	promHandler http.Handler
	now         func() time.Time
}

// NewHealthHandler: при apiChecker == nil готовность всегда fail.
func NewHealthHandler(apiChecker ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		apiChecker:  apiChecker,
		promHandler: promhttp.Handler(),
		now:         time.Now,
	}
}

type serviceInfo struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

type checkResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type liveResponse struct {
	serviceInfo
}

type readyResponse struct {
	serviceInfo
	Checks readyChecks `json:"checks"`
}

type readyChecks struct {
	CreditRiskAPI checkResult `json:"creditRiskApi"`
}

func (h *HealthHandler) info(status string) serviceInfo {
	return serviceInfo{
		Status:    status,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   ServiceName,
	}
}

// HealthLive отвечает 200, пока процесс обслуживает запросы.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, liveResponse{serviceInfo: h.info(statusOK)})
}

// HealthReady: 503 только при fail, degraded отвечает 200.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	api := checkResult{Status: statusFail, Message: "no inicializado"}
	if h.apiChecker != nil {
		api.Status, api.Message = h.apiChecker.CheckReady()
	}

	resp := readyResponse{
		serviceInfo: h.info(worstStatus(api.Status)),
		Checks:      readyChecks{CreditRiskAPI: api},
	}

	code := http.StatusOK
	if resp.Status == statusFail {
		code = http.StatusServiceUnavailable
	}
	writeHealth(w, code, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// worstStatus: fail > degraded > ok. Неизвестный статус считается ok.
func worstStatus(statuses ...string) string {
	worst := statusOK
	for _, s := range statuses {
		switch s {
		case statusFail:
			return statusFail
		case statusDegraded:
			worst = statusDegraded
		}
	}
	return worst
}
