// Пакет middleware — HTTP middleware панели управления.
// auth.go — проверка сессии сотрудника (cookie) и доступа роли к маршруту.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/bigkaa/riskdesk/internal/api/errors"
	"github.com/bigkaa/riskdesk/internal/domain/rbac"
	"github.com/bigkaa/riskdesk/internal/ui/auth"
	"github.com/bigkaa/riskdesk/internal/ui/views"
)

// BasePath — префикс маршрутов панели управления.
const BasePath = "/manager"

type contextKey string

const (
	// ContextKeySession — данные сессии в контексте запроса.
	ContextKeySession contextKey = "ui_session"
	// ContextKeyRequestID — идентификатор запроса.
	ContextKeyRequestID contextKey = "request_id"
)

// Сообщение для отсутствующей или истёкшей сессии.
const msgSessionRequired = "Sesión expirada o no iniciada"

// SessionAuth проверяет сессию сотрудника.
type SessionAuth struct {
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewSessionAuth создаёт SessionAuth.
func NewSessionAuth(sessionManager *auth.SessionManager, logger *slog.Logger) *SessionAuth {
	return &SessionAuth{
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// Middleware извлекает сессию из cookie; без действующей сессии отвечает 401.
func (sa *SessionAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sa.sessionManager.GetSessionFromRequest(r)
			if err != nil {
				sa.logger.Debug("Ошибка чтения сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				// Повреждённый cookie очищаем
				sa.sessionManager.ClearSessionCookie(w)
				apierrors.Unauthorized(w, msgSessionRequired)
				return
			}
			if session == nil {
				apierrors.Unauthorized(w, msgSessionRequired)
				return
			}
			if session.IsExpired() {
				sa.logger.Info("Сессия истекла",
					slog.String("session_id", session.SessionID),
					slog.String("email", session.Email),
				)
				sa.sessionManager.ClearSessionCookie(w)
				apierrors.Unauthorized(w, msgSessionRequired)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext извлекает SessionData из контекста запроса.
// Возвращает nil если запрос не прошёл через SessionAuth.
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, ok := ctx.Value(ContextKeySession).(*auth.SessionData)
	if !ok {
		return nil
	}
	return session
}

// AccessChecker решает, доступен ли путь роли.
type AccessChecker interface {
	CanAccess(path string, role rbac.Role) bool
}

// RouteGuard пропускает запрос, только если роль сессии допущена к маршруту.
// Недоступный маршрут отвечает так же, как несуществующий (404).
// Применяется после SessionAuth.
func RouteGuard(checker AccessChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "route_guard"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil {
				apierrors.Unauthorized(w, msgSessionRequired)
				return
			}

			path := strings.TrimPrefix(r.URL.Path, BasePath)
			if !checker.CanAccess(path, session.Role) {
				logger.Debug("Маршрут недоступен роли",
					slog.String("path", path),
					slog.String("role", session.Role.String()),
				)
				NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NotFound отвечает 404: HTML-страницей, если клиент её принимает, иначе JSON.
func NotFound(w http.ResponseWriter, r *http.Request) {
	if acceptsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_ = views.NotFound(r.URL.Path).Render(r.Context(), w)
		return
	}
	apierrors.NotFound(w, views.NotFoundTitle)
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
