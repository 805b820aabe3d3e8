package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	apihandlers "github.com/bigkaa/riskdesk/internal/api/handlers"
	"github.com/bigkaa/riskdesk/internal/apiclient"
	"github.com/bigkaa/riskdesk/internal/config"
	"github.com/bigkaa/riskdesk/internal/routeaccess"
	"github.com/bigkaa/riskdesk/internal/ui/auth"
	uihandlers "github.com/bigkaa/riskdesk/internal/ui/handlers"
	"github.com/bigkaa/riskdesk/internal/workspace"
)

const testSecret = "server-test-secret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCreditRiskAPI — минимальный API: вход и список клиентов.
func fakeCreditRiskAPI(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"id":     7,
			"email":  "ana@bank.test",
			"name":   "Ana",
			"roleId": 2,
			"exp":    time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(testSecret))
		if err != nil {
			t.Errorf("подпись токена: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": signed})
	})
	r.Get("/customers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"ID":1,"name":"Lucía"},{"ID":2,"name":"Mateo"}]`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := testLogger()
	api := fakeCreditRiskAPI(t)

	client, err := apiclient.New(api.URL, "", 5*time.Second, logger)
	if err != nil {
		t.Fatal(err)
	}
	sessions, err := auth.NewSessionManager("server-test", false, 0)
	if err != nil {
		t.Fatal(err)
	}
	decoder, err := auth.NewTokenDecoder(auth.DecoderOptions{Secret: testSecret}, logger)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := routeaccess.DefaultTree()
	if err != nil {
		t.Fatal(err)
	}
	registry := workspace.NewRegistry(10, time.Hour, func(sessionID, token string) *workspace.Workspace {
		return workspace.New(sessionID, token, client, 10, logger)
	}, logger)
	t.Cleanup(registry.Purge)

	return NewRouter(logger, Deps{
		Health:   apihandlers.NewHealthHandler(nil),
		UI:       uihandlers.New(sessions, decoder, client, registry, tree, logger),
		Sessions: sessions,
		Access:   tree,
	})
}

func serve(router http.Handler, method, path string, body []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"liveness", "/health/live", http.StatusOK},
		{"readiness без проверки API", "/health/ready", http.StatusServiceUnavailable},
		{"метрики", "/metrics", http.StatusOK},
		{"панель без сессии", "/manager/customers", http.StatusUnauthorized},
		{"неизвестный путь", "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, tt.path, nil, nil)
			if rec.Code != tt.wantCode {
				t.Errorf("GET %s: статус = %d, хотели %d", tt.path, rec.Code, tt.wantCode)
			}
		})
	}
}

func TestRouter_LoginAndBrowse(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodPost, "/auth/login",
		[]byte(`{"email":"ana@bank.test","password":"x"}`), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("вход: статус %d, тело %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("нет X-Request-ID в ответе")
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("cookie сессии не выставлен")
	}

	rec = serve(router, http.MethodGet, "/manager/customers", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("клиенты: статус %d, тело %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Lucía") {
		t.Errorf("в списке нет клиента: %s", rec.Body.String())
	}

	// USER не видит администрирование пользователей
	rec = serve(router, http.MethodGet, "/manager/users", nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Errorf("пользователи для USER: статус %d, хотели 404", rec.Code)
	}
}

func TestServer_RunStopsOnContextCancel(t *testing.T) {
	cfg := &config.Config{
		Port:             0,
		HTTPReadTimeout:  time.Second,
		HTTPWriteTimeout: time.Second,
		HTTPIdleTimeout:  time.Second,
		ShutdownTimeout:  time.Second,
	}
	srv := New(cfg, testLogger(), Deps{
		Health: apihandlers.NewHealthHandler(nil),
		UI:     uihandlers.New(nil, nil, nil, nil, routeaccess.Tree{}, testLogger()),
	})

	hookCalled := false
	srv.OnShutdown(func() { hookCalled = true })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run вернул ошибку: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("сервер не остановился")
	}
	if !hookCalled {
		t.Error("функция остановки не вызвана")
	}
}
