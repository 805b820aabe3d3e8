// Пакет service — фоновые сервисы riskdesk.
// dephealth.go — мониторинг API кредитного риска через topologymetrics SDK.
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // регистрация HTTP checker factory
	"github.com/prometheus/client_golang/prometheus"
)

// DependencyName — имя API кредитного риска в графе зависимостей.
const DependencyName = "credit-risk-api"

// Статусы готовности.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFail     = "fail"
)

// DephealthService — периодическая проверка доступности API.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// DephealthConfig — параметры мониторинга.
type DephealthConfig struct {
	// ServiceID — имя вершины графа текущего приложения
	ServiceID string
	Group     string
	// APIBaseURL — базовый URL API (может содержать префикс пути)
	APIBaseURL string
	// HealthPath — путь проверки относительно APIBaseURL
	HealthPath    string
	CheckInterval time.Duration
}

// NewDephealthService создаёт сервис мониторинга.
// Метрики регистрируются в глобальном Prometheus registry.
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger) (*DephealthService, error) {
	return newDephealthService(cfg, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(cfg DephealthConfig, logger *slog.Logger, registerer prometheus.Registerer) (*DephealthService, error) {
	return newDephealthService(cfg, logger, dephealth.WithRegisterer(registerer))
}

func newDephealthService(cfg DephealthConfig, logger *slog.Logger, extraOpts ...dephealth.Option) (*DephealthService, error) {
	checkPath, err := healthCheckPath(cfg.APIBaseURL, cfg.HealthPath)
	if err != nil {
		return nil, err
	}

	depOpts := []dephealth.DependencyOption{
		dephealth.FromURL(cfg.APIBaseURL),
		dephealth.WithHTTPHealthPath(checkPath),
		dephealth.CheckInterval(cfg.CheckInterval),
		dephealth.Critical(true),
	}
	if strings.HasPrefix(cfg.APIBaseURL, "https://") {
		depOpts = append(depOpts, dephealth.WithHTTPTLSSkipVerify(false))
	}

	opts := make([]dephealth.Option, 0, 2+len(extraOpts))
	opts = append(opts,
		dephealth.WithLogger(logger),
		dephealth.HTTP(DependencyName, depOpts...),
	)
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, fmt.Errorf("создание dephealth: %w", err)
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// healthCheckPath соединяет префикс пути базового URL с путём проверки:
// http://api:8080/v1 + /health → /v1/health.
func healthCheckPath(baseURL, healthPath string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("некорректный URL API %q", baseURL)
	}
	if healthPath == "" {
		healthPath = "/"
	}
	joined := path.Join("/", u.Path, healthPath)
	if strings.HasSuffix(healthPath, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return joined, nil
}

// Start запускает периодическую проверку.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг API кредитного риска запущен")
	return ds.dh.Start(ctx)
}

// Stop останавливает проверку.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг API кредитного риска остановлен")
}

// Health возвращает состояние зависимостей (true — ok).
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

// CheckReady — статус готовности для /health/ready.
func (ds *DephealthService) CheckReady() (string, string) {
	return readiness(ds.Health())
}

// readiness сводит состояние зависимостей к статусу готовности.
// Ключи Health() имеют формат "dependency:host:port".
// До первой проверки состояние неизвестно, статус degraded.
func readiness(health map[string]bool) (string, string) {
	known := false
	for key, ok := range health {
		if key != DependencyName && !strings.HasPrefix(key, DependencyName+":") {
			continue
		}
		known = true
		if !ok {
			return StatusFail, "API кредитного риска недоступен"
		}
	}
	if !known {
		return StatusDegraded, "проверка API ещё не выполнялась"
	}
	return StatusOK, ""
}
