package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/bigkaa/riskdesk/internal/api/errors"
	"github.com/bigkaa/riskdesk/internal/apiclient"
	"github.com/bigkaa/riskdesk/internal/domain/rbac"
	"github.com/bigkaa/riskdesk/internal/routeaccess"
	"github.com/bigkaa/riskdesk/internal/ui/auth"
	"github.com/bigkaa/riskdesk/internal/ui/middleware"
	"github.com/bigkaa/riskdesk/internal/workspace"
)

// Сообщения входа.
const (
	msgBadCredentials = "usuario o contraseña incorrectos"
	msgInvalidToken   = "Token inválido o expirado"
	msgLoginRequired  = "El correo y la contraseña son obligatorios"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // G117: тело запроса входа
}

// userInfo — сотрудник текущей сессии.
type userInfo struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      rbac.Role `json:"role"`
	ExpiresAt int64     `json:"expiresAt"`
}

type meResponse struct {
	User       userInfo              `json:"user"`
	Navigation []routeaccess.NavItem `json:"navigation"`
}

func newUserInfo(s *auth.SessionData) userInfo {
	return userInfo{
		ID:        s.UserID,
		Name:      s.Name,
		Email:     s.Email,
		Role:      s.Role,
		ExpiresAt: s.ExpiresAt,
	}
}

// Login — POST /auth/login.
// Вход через API, токен разбирается, сессия записывается в cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		apierrors.ValidationError(w, msgLoginRequired)
		return
	}

	token, err := h.api.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeLoginError(w, err)
		return
	}

	identity, err := h.decoder.Decode(token)
	if err != nil {
		h.logger.Warn("API выдал токен, который не удалось разобрать",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		apierrors.RemoteError(w, http.StatusBadGateway, msgInvalidToken)
		return
	}

	session := &auth.SessionData{
		SessionID: uuid.NewString(),
		Token:     token,
		ExpiresAt: identity.ExpiresAt.Unix(),
		UserID:    identity.UserID,
		Name:      identity.Name,
		Email:     identity.Email,
		Role:      identity.Role,
	}
	if err := h.sessions.SetSessionCookie(w, session); err != nil {
		h.logger.Error("Ошибка записи cookie сессии", slog.String("error", err.Error()))
		apierrors.InternalError(w, msgInternalError)
		return
	}
	h.registry.GetOrCreate(session.SessionID, session.Token)

	h.logger.Info("Сотрудник вошёл",
		slog.String("session_id", session.SessionID),
		slog.String("email", session.Email),
		slog.String("role", session.Role.String()),
	)
	writeJSON(w, http.StatusOK, meResponse{
		User:       newUserInfo(session),
		Navigation: h.tree.Navigation(session.Role),
	})
}

// writeLoginError — неверные данные входа отдаются как 401, остальное как обычные ошибки API.
func (h *Handler) writeLoginError(w http.ResponseWriter, err error) {
	var re *apiclient.RemoteError
	if errors.As(err, &re) && (re.Status == http.StatusUnauthorized || re.Status == http.StatusBadRequest) {
		msg := re.Message
		if msg == "" {
			msg = msgBadCredentials
		}
		apierrors.Unauthorized(w, msg)
		return
	}
	h.writeStoreError(w, err, "")
}

// Logout — POST /auth/logout. Пространство сессии закрывается, cookie удаляется.
// Без сессии тоже отвечает 204.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.GetSessionFromRequest(r)
	if err == nil && session != nil {
		h.registry.Remove(session.SessionID)
		h.logger.Info("Сотрудник вышел",
			slog.String("session_id", session.SessionID),
			slog.String("email", session.Email),
		)
	}
	h.sessions.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me — GET /manager/me: сотрудник и меню для его роли.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, meResponse{
		User:       newUserInfo(session),
		Navigation: h.tree.Navigation(session.Role),
	})
}

type homeResponse struct {
	User   userInfo                          `json:"user"`
	Stores map[string]workspace.StoreSummary `json:"stores"`
}

// Home — GET /manager/home: сводка загруженных коллекций пространства.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	ws, _, cancel := h.workspace(r)
	defer cancel()

	stores := ws.Summary()
	// Справочник сотрудников доступен только администратору
	if !h.tree.CanAccess("/users", session.Role) {
		delete(stores, workspace.StoreUsers)
	}
	writeJSON(w, http.StatusOK, homeResponse{User: newUserInfo(session), Stores: stores})
}

// ResetStatus — POST /manager/{store}/status/reset: сброс сообщений хранилища.
func (h *Handler) ResetStatus(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, _, cancel := h.workspace(r)
		defer cancel()

		s, ok := ws.Store(name)
		if !ok {
			middleware.NotFound(w, r)
			return
		}
		s.ResetStatus()
		w.WriteHeader(http.StatusNoContent)
	}
}
