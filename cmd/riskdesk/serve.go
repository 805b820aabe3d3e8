package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	apihandlers "github.com/bigkaa/riskdesk/internal/api/handlers"
	"github.com/bigkaa/riskdesk/internal/apiclient"
	"github.com/bigkaa/riskdesk/internal/config"
	"github.com/bigkaa/riskdesk/internal/routeaccess"
	"github.com/bigkaa/riskdesk/internal/server"
	"github.com/bigkaa/riskdesk/internal/service"
	"github.com/bigkaa/riskdesk/internal/ui/auth"
	uihandlers "github.com/bigkaa/riskdesk/internal/ui/handlers"
	"github.com/bigkaa/riskdesk/internal/workspace"
)

// Параметры обновления ключей JWKS.
const (
	jwksRefreshInterval = time.Hour
	jwksClientTimeout   = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер панели",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// 1. Конфигурация из переменных окружения (и .env)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("загрузка конфигурации: %w", err)
	}

	// 2. Логирование
	logger := config.SetupLogger(cfg)
	logger.Info("riskdesk запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("api", cfg.APIBaseURL),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// 3. Клиент API кредитного риска (без токена, токен добавляет пространство сессии)
	client, err := apiclient.New(cfg.APIBaseURL, cfg.APICACertPath, cfg.APITimeout, logger)
	if err != nil {
		return fmt.Errorf("клиент API: %w", err)
	}

	// 4. Разбор токенов API
	decoder, err := auth.NewTokenDecoder(auth.DecoderOptions{
		JWKSURL:             cfg.JWKSURL,
		JWKSRefreshInterval: jwksRefreshInterval,
		JWKSClientTimeout:   jwksClientTimeout,
		Secret:              cfg.JWTSecret,
		Leeway:              cfg.JWTLeeway,
	}, logger)
	if err != nil {
		return fmt.Errorf("разбор токенов: %w", err)
	}

	// 5. Сессии (AES-256-GCM cookie)
	sessions, err := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionSecure, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("менеджер сессий: %w", err)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("RD_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
	}

	// 6. Дерево маршрутов
	tree, err := routeaccess.LoadTreeOrDefault(cfg.RoutesFile)
	if err != nil {
		return fmt.Errorf("дерево маршрутов: %w", err)
	}

	// 7. Реестр пространств сессий
	registry := workspace.NewRegistry(cfg.WorkspaceMax, cfg.SessionTTL, func(sessionID, token string) *workspace.Workspace {
		return workspace.New(sessionID, token, client, cfg.PageSize, logger)
	}, logger)

	// 8. topologymetrics: доступность API кредитного риска
	var apiChecker apihandlers.ReadinessChecker
	dephealthSvc, err := service.NewDephealthService(service.DephealthConfig{
		ServiceID:     apihandlers.ServiceName,
		Group:         cfg.DephealthGroup,
		APIBaseURL:    cfg.APIBaseURL,
		HealthPath:    cfg.APIHealthPath,
		CheckInterval: cfg.DephealthCheckInterval,
	}, logger)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
		dephealthSvc = nil
	} else {
		apiChecker = dephealthSvc
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 9. HTTP-сервер
	srv := server.New(cfg, logger, server.Deps{
		Health:   apihandlers.NewHealthHandler(apiChecker),
		UI:       uihandlers.New(sessions, decoder, client, registry, tree, logger),
		Sessions: sessions,
		Access:   tree,
	})
	if dephealthSvc != nil {
		srv.OnShutdown(dephealthSvc.Stop)
	}
	srv.OnShutdown(registry.Purge)

	return srv.Run(ctx)
}
