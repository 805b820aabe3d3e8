// Пакет apiclient — HTTP-клиент удалённого API кредитного риска.
// Все запросы к ресурсам идут с bearer-токеном сессии сотрудника.
// Операции: Login (POST login), CRUD ресурсов (customers, credit-requests, ...).
package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// maxErrorBody — сколько байт тела ответа читается для сообщения об ошибке.
const maxErrorBody = 64 << 10

// TokenProvider — функция, возвращающая токен API для авторизации запросов.
type TokenProvider func(ctx context.Context) (string, error)

// StaticToken возвращает TokenProvider с фиксированным токеном.
func StaticToken(token string) TokenProvider {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// Client — HTTP-клиент API кредитного риска.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	tokenProvider TokenProvider
	logger        *slog.Logger
}

// New создаёт клиент API.
// baseURL — базовый URL API (например, http://risk-api:8080/api).
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
// timeout — таймаут HTTP-запросов (RD_API_TIMEOUT).
func New(baseURL, caCertPath string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("некорректный URL API %q: %w", baseURL, err)
	}

	httpClient := &http.Client{Timeout: timeout}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата API: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат API добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With(slog.String("component", "api_client")),
	}, nil
}

// WithToken возвращает копию клиента, авторизующую запросы через tp.
// HTTP-транспорт общий, копия создаётся на каждую сессию.
func (c *Client) WithToken(tp TokenProvider) *Client {
	cp := *c
	cp.tokenProvider = tp
	return &cp
}

// BaseURL возвращает базовый URL API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login выполняет вход сотрудника и возвращает токен API.
// POST login {email, password} → {token} или {error}.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"` //nolint:gosec // G117: тело запроса входа
	}{Email: email, Password: password}

	var resp struct {
		Token string `json:"token"` //nolint:gosec // G117: JSON-маппинг ответа входа
	}
	if err := c.send(ctx, http.MethodPost, "login", "login", nil, body, &resp, false); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &RemoteError{
			Status:  http.StatusBadGateway,
			Message: "Respuesta de inicio de sesión sin token",
			Op:      "POST login",
		}
	}

	c.logger.Info("Вход сотрудника выполнен", slog.String("email", email))
	return resp.Token, nil
}

// send выполняет запрос к API.
// resource — метка ресурса для метрик, path — путь относительно baseURL.
// in — тело запроса (nil — без тела), out — куда декодировать ответ (nil — не декодировать).
// authorize — добавлять ли bearer-токен.
func (c *Client) send(
	ctx context.Context,
	method, resource, path string,
	query url.Values,
	in, out any,
	authorize bool,
) error {
	op := method + " " + path
	reqURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("кодирование тела %s: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("создание запроса %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authorize && c.tokenProvider != nil {
		token, err := c.tokenProvider(ctx)
		if err != nil {
			return fmt.Errorf("получение токена для %s: %w", op, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации
	if err != nil {
		observeRequest(resource, method, statusUnreachable, start)
		// Отмена запроса вызывающей стороной не считается недоступностью API
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		c.logger.Warn("API недоступен",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return &RemoteError{Unreachable: true, Op: op, Err: err}
	}
	defer resp.Body.Close()
	observeRequest(resource, method, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		remoteErr := &RemoteError{
			Status:  resp.StatusCode,
			Message: extractMessage(body),
			Op:      op,
		}
		c.logger.Debug("API вернул ошибку",
			slog.String("operation", op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", remoteErr.Message),
		)
		return remoteErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{
			Status: http.StatusBadGateway,
			Op:     op,
			Err:    fmt.Errorf("декодирование ответа: %w", err),
		}
	}
	return nil
}

// IsNotFound — вернул ли API 404.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA-сертификатом.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	pem, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("в %s нет PEM-сертификатов", caCertPath)
	}

	return &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}, nil
}
