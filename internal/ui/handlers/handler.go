// Пакет handlers — HTTP-обработчики панели управления /manager.
// Каждый запрос работает с пространством своей сессии (workspace.Registry),
// состояние коллекций живёт в хранилищах пространства.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/riskdesk/internal/api/errors"
	"github.com/bigkaa/riskdesk/internal/apiclient"
	"github.com/bigkaa/riskdesk/internal/domain/model"
	"github.com/bigkaa/riskdesk/internal/routeaccess"
	"github.com/bigkaa/riskdesk/internal/store"
	"github.com/bigkaa/riskdesk/internal/ui/auth"
	"github.com/bigkaa/riskdesk/internal/ui/middleware"
	"github.com/bigkaa/riskdesk/internal/workspace"
)

// Сообщения для пользователя.
const (
	msgBusy          = "Otra operación está en curso, intente de nuevo"
	msgInvalidID     = "Identificador inválido"
	msgInvalidJSON   = "Datos inválidos"
	msgCanceled      = "La operación fue cancelada"
	msgInternalError = "Error interno del servidor"
	msgRemoteError   = "Error en el servidor remoto"
)

// maxBodySize — ограничение тела запроса.
const maxBodySize = 1 << 20

// Handler — обработчики панели управления.
type Handler struct {
	sessions *auth.SessionManager
	decoder  *auth.TokenDecoder
	api      *apiclient.Client
	registry *workspace.Registry
	tree     routeaccess.Tree
	logger   *slog.Logger
}

// New создаёт обработчики.
func New(
	sessions *auth.SessionManager,
	decoder *auth.TokenDecoder,
	api *apiclient.Client,
	registry *workspace.Registry,
	tree routeaccess.Tree,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		sessions: sessions,
		decoder:  decoder,
		api:      api,
		registry: registry,
		tree:     tree,
		logger:   logger.With(slog.String("component", "ui_handlers")),
	}
}

// workspace возвращает пространство сессии запроса и контекст, который
// отменяется при закрытии пространства. cancel обязательно вызывать.
func (h *Handler) workspace(r *http.Request) (*workspace.Workspace, context.Context, context.CancelFunc) {
	session := middleware.SessionFromContext(r.Context())
	ws := h.registry.GetOrCreate(session.SessionID, session.Token)
	ctx, cancel := ws.Bind(r.Context())
	return ws, ctx, cancel
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса; при ошибке отвечает 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		apierrors.ValidationError(w, msgInvalidJSON)
		return false
	}
	return true
}

// pathID разбирает числовой параметр {name} пути; при ошибке отвечает 400.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		apierrors.ValidationError(w, msgInvalidID)
		return 0, false
	}
	return uint(id), true
}

// writeStoreError переводит ошибку операции хранилища в HTTP-ответ.
// message — сообщение хранилища (lastError); пустое заменяется текстом ошибки.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error, message string) {
	var re *apiclient.RemoteError
	var ve *model.ValidationError

	switch {
	case errors.Is(err, store.ErrBusy):
		apierrors.Conflict(w, msgBusy)
	case errors.As(err, &ve):
		apierrors.ValidationError(w, ve.Message)
	case errors.Is(err, store.ErrInvalidPageSize):
		apierrors.ValidationError(w, "El tamaño de página debe ser positivo")
	case errors.As(err, &re):
		if message == "" {
			message = re.UserMessage()
		}
		if message == "" {
			message = msgRemoteError
		}
		switch {
		case re.Unreachable:
			apierrors.APIUnavailable(w, message)
		case re.Status == http.StatusNotFound:
			apierrors.NotFound(w, message)
		case re.Status >= 400 && re.Status < 500:
			apierrors.RemoteError(w, re.Status, message)
		default:
			apierrors.RemoteError(w, http.StatusBadGateway, message)
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		apierrors.Canceled(w, msgCanceled)
	default:
		h.logger.Error("Необработанная ошибка", slog.String("error", err.Error()))
		apierrors.InternalError(w, msgInternalError)
	}
}
