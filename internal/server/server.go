// Пакет server — HTTP-сервер riskdesk с graceful shutdown.
// Без TLS: TLS termination на ingress.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apihandlers "github.com/bigkaa/riskdesk/internal/api/handlers"
	"github.com/bigkaa/riskdesk/internal/config"
	"github.com/bigkaa/riskdesk/internal/ui/auth"
	uihandlers "github.com/bigkaa/riskdesk/internal/ui/handlers"
	"github.com/bigkaa/riskdesk/internal/ui/middleware"
)

// Deps — компоненты, из которых собирается роутер.
type Deps struct {
	Health   *apihandlers.HealthHandler
	UI       *uihandlers.Handler
	Sessions *auth.SessionManager
	Access   middleware.AccessChecker
}

// Server — HTTP-сервер riskdesk.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
	// onShutdown вызываются после остановки HTTP-сервера
	onShutdown []func()
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
func New(cfg *config.Config, logger *slog.Logger, deps Deps) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, deps),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает роутер:
//
//	/health/live, /health/ready, /metrics — без сессии
//	POST /auth/login, POST /auth/logout — вход и выход
//	/manager/... — сессия + проверка доступа роли к маршруту
func NewRouter(logger *slog.Logger, deps Deps) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	// Паника обработчика отвечает 500, соединение не обрывается
	router.Use(chimiddleware.Recoverer)

	router.Get("/health/live", deps.Health.HealthLive)
	router.Get("/health/ready", deps.Health.HealthReady)
	router.Get("/metrics", deps.Health.GetMetrics)

	router.Post("/auth/login", deps.UI.Login)
	router.Post("/auth/logout", deps.UI.Logout)

	router.Route(middleware.BasePath, func(r chi.Router) {
		r.Use(middleware.NewSessionAuth(deps.Sessions, logger).Middleware())
		r.Use(middleware.RouteGuard(deps.Access, logger))
		deps.UI.Routes(r)
	})

	router.NotFound(middleware.NotFound)

	return router
}

// OnShutdown регистрирует функцию, вызываемую после остановки HTTP-сервера.
func (s *Server) OnShutdown(fn func()) {
	s.onShutdown = append(s.onShutdown, fn)
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM)
// или отмены ctx. После этого выполняется graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case <-ctx.Done():
		s.logger.Info("Контекст сервера отменён")
	case err := <-errCh:
		if err != nil {
			s.runShutdownHooks()
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	err := s.httpServer.Shutdown(shutdownCtx)
	s.runShutdownHooks()
	if err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}

func (s *Server) runShutdownHooks() {
	for i := len(s.onShutdown) - 1; i >= 0; i-- {
		s.onShutdown[i]()
	}
}
