// Пакет config — загрузка и валидация конфигурации riskdesk
// из переменных окружения (и файла .env, если он есть).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// DefaultEnvFile — файл с переменными окружения для локального запуска.
const DefaultEnvFile = ".env"

// Config содержит все параметры конфигурации riskdesk.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ShutdownTimeout  time.Duration

	// --- API кредитного риска ---

	// Базовый URL API (обязательный), может содержать префикс пути
	APIBaseURL string
	// Таймаут запроса к API
	APITimeout time.Duration
	// Путь к CA-сертификату API (опционально)
	APICACertPath string
	// Путь проверки доступности API относительно APIBaseURL
	APIHealthPath string

	// --- Токены API ---

	// Общий секрет HS256 (опционально)
	JWTSecret string
	// JWKS endpoint (опционально, приоритетнее секрета)
	JWKSURL string
	// Допустимое отклонение часов
	JWTLeeway time.Duration

	// --- Сессии ---

	// Ключ шифрования cookie; если пуст, ключ случайный на время процесса
	SessionSecret string
	// Флаг Secure у cookie
	SessionSecure bool
	// Верхняя граница жизни сессии
	SessionTTL time.Duration

	// --- Пространства сессий ---

	// Максимум одновременно хранимых пространств
	WorkspaceMax int
	// Начальный размер страницы списков
	PageSize int

	// Файл дерева маршрутов; если пуст, используется встроенное дерево
	RoutesFile string

	// --- topologymetrics ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Перед чтением подгружается .env из текущего каталога, если он существует;
// уже заданные переменные окружения не переопределяются.
func Load() (*Config, error) {
	if err := loadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}

	cfg := &Config{}
	var err error

	// --- Сервер ---

	// RD_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("RD_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("RD_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("RD_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// RD_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("RD_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("RD_LOG_LEVEL: %w", err)
	}

	// RD_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("RD_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("RD_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.HTTPReadTimeout, err = getEnvDuration("RD_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RD_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("RD_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RD_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("RD_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RD_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// RD_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("RD_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RD_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- API кредитного риска ---

	cfg.APIBaseURL, err = getEnvRequired("RD_API_BASE_URL")
	if err != nil {
		return nil, err
	}
	if err := validateBaseURL(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("RD_API_BASE_URL: %w", err)
	}

	// RD_API_TIMEOUT — таймаут запроса к API (по умолчанию 15s)
	cfg.APITimeout, err = getEnvPositiveDuration("RD_API_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RD_API_TIMEOUT: %w", err)
	}

	cfg.APICACertPath = getEnvDefault("RD_API_CA_CERT_PATH", "")
	cfg.APIHealthPath = getEnvDefault("RD_API_HEALTH_PATH", "/health")

	// --- Токены API ---

	cfg.JWTSecret = getEnvDefault("RD_AUTH_JWT_SECRET", "")
	cfg.JWKSURL = getEnvDefault("RD_AUTH_JWKS_URL", "")
	if cfg.JWKSURL != "" {
		if err := validateBaseURL(cfg.JWKSURL); err != nil {
			return nil, fmt.Errorf("RD_AUTH_JWKS_URL: %w", err)
		}
	}

	// RD_AUTH_JWT_LEEWAY — допуск часов (по умолчанию 5s)
	cfg.JWTLeeway, err = getEnvDuration("RD_AUTH_JWT_LEEWAY", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RD_AUTH_JWT_LEEWAY: %w", err)
	}
	if cfg.JWTLeeway < 0 {
		return nil, fmt.Errorf("RD_AUTH_JWT_LEEWAY: значение не может быть отрицательным")
	}

	// --- Сессии ---

	cfg.SessionSecret = getEnvDefault("RD_SESSION_SECRET", "")
	cfg.SessionSecure, err = getEnvBool("RD_SESSION_SECURE", true)
	if err != nil {
		return nil, fmt.Errorf("RD_SESSION_SECURE: %w", err)
	}

	// RD_SESSION_TTL — верхняя граница жизни сессии (по умолчанию 8h)
	cfg.SessionTTL, err = getEnvPositiveDuration("RD_SESSION_TTL", 8*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("RD_SESSION_TTL: %w", err)
	}

	// --- Пространства сессий ---

	cfg.WorkspaceMax, err = getEnvInt("RD_WORKSPACE_MAX", 500)
	if err != nil {
		return nil, fmt.Errorf("RD_WORKSPACE_MAX: %w", err)
	}
	if cfg.WorkspaceMax < 1 {
		return nil, fmt.Errorf("RD_WORKSPACE_MAX: значение должно быть > 0")
	}

	// RD_PAGE_SIZE — начальный размер страницы (по умолчанию 10)
	cfg.PageSize, err = getEnvInt("RD_PAGE_SIZE", 10)
	if err != nil {
		return nil, fmt.Errorf("RD_PAGE_SIZE: %w", err)
	}
	if cfg.PageSize < 1 || cfg.PageSize > 1000 {
		return nil, fmt.Errorf("RD_PAGE_SIZE: значение %d вне допустимого диапазона 1-1000", cfg.PageSize)
	}

	cfg.RoutesFile = getEnvDefault("RD_ROUTES_FILE", "")

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("RD_DEPHEALTH_GROUP", "credit-risk")
	cfg.DephealthCheckInterval, err = getEnvPositiveDuration("RD_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RD_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	return cfg, nil
}

// loadEnvFile подгружает переменные из файла, если он существует.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("загрузка %s: %w", path, err)
	}
	return nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("некорректный URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("недопустимая схема %q, допустимые: http, https", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("в URL %q не указан хост", raw)
	}
	return nil
}

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvPositiveDuration — getEnvDuration с проверкой > 0.
func getEnvPositiveDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
