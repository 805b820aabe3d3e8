package handlers

import (
	"context"
	"maps"
	"net/http"
	"strconv"

	apierrors "github.com/bigkaa/riskdesk/internal/api/errors"
	"github.com/bigkaa/riskdesk/internal/store"
	"github.com/bigkaa/riskdesk/internal/workspace"
)

// validatable — форма, которую можно проверить до отправки в API.
type validatable interface {
	Validate() error
}

// listResponse — видимая страница коллекции и состояние хранилища.
type listResponse struct {
	Items       any                `json:"items"`
	Page        store.PageState    `json:"page"`
	Loading     store.LoadingFlags `json:"loading"`
	Loaded      bool               `json:"loaded"`
	LastError   string             `json:"lastError,omitempty"`
	LastSuccess string             `json:"lastSuccess,omitempty"`
}

// itemResponse — результат операции с одной записью.
type itemResponse struct {
	Item    any    `json:"item,omitempty"`
	Message string `json:"message,omitempty"`
	// Refreshed — связанная запись, обновлённая после операции
	Refreshed any `json:"refreshed,omitempty"`
}

// collection связывает хранилище пространства с HTTP-обработчиками.
type collection[T store.Entity, C, U validatable] struct {
	h *Handler
	// pick выбирает хранилище из пространства сессии
	pick func(*workspace.Workspace) *store.Store[T, C, U]
	// present — представление записи в ответе (nil — запись как есть)
	present func(T) any
	// after вызывается после успешного изменения записи и возвращает
	// связанную обновлённую запись (nil, если возвращать нечего)
	after func(ctx context.Context, ws *workspace.Workspace, item T) any
}

func (c collection[T, C, U]) view(item T) any {
	if c.present == nil {
		return item
	}
	return c.present(item)
}

func (c collection[T, C, U]) views(items []T) any {
	if c.present == nil {
		return items
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, c.present(item))
	}
	return out
}

// list — GET коллекции.
// filter — фильтр по родителю из пути (nil — полный список).
// Загрузка выполняется при refresh=1, при первом обращении, при смене
// фильтра и для отфильтрованных списков без параметров страницы.
// page, limit — страница и её размер; nav=next|prev — соседняя страница.
func (c collection[T, C, U]) list(filter func(*http.Request) (store.Filter, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f store.Filter
		if filter != nil {
			var ok bool
			if f, ok = filter(r); !ok {
				apierrors.ValidationError(w, msgInvalidID)
				return
			}
		}

		q := r.URL.Query()
		paging := q.Has("page") || q.Has("limit") || q.Has("nav")

		ws, ctx, cancel := c.h.workspace(r)
		defer cancel()
		s := c.pick(ws)

		if needsFetch(s.Snapshot(), f, q.Get("refresh") == "1", paging) {
			if err := s.FetchAll(ctx, f); err != nil {
				c.h.writeStoreError(w, err, s.Snapshot().Error)
				return
			}
		}

		if q.Has("page") || q.Has("limit") {
			req, ok := pageRequest(q.Get("page"), q.Get("limit"), s.Snapshot().Page)
			if !ok {
				apierrors.ValidationError(w, "Parámetros de paginación inválidos")
				return
			}
			if err := s.Paginate(req); err != nil {
				c.h.writeStoreError(w, err, "")
				return
			}
		}

		switch q.Get("nav") {
		case "":
		case "next":
			s.NextPage()
		case "prev":
			s.PrevPage()
		default:
			apierrors.ValidationError(w, "nav debe ser next o prev")
			return
		}

		snap := s.Snapshot()
		writeJSON(w, http.StatusOK, listResponse{
			Items:       c.views(snap.Items),
			Page:        snap.Page,
			Loading:     snap.Loading,
			Loaded:      snap.Loaded,
			LastError:   snap.Error,
			LastSuccess: snap.Success,
		})
	}
}

// needsFetch решает, загружать ли коллекцию заново.
// Набор, загруженный с другим фильтром (другой родитель), не переиспользуется
// даже при листании.
func needsFetch[T store.Entity](snap store.Snapshot[T], f store.Filter, refresh, paging bool) bool {
	switch {
	case refresh, !snap.Loaded:
		return true
	case !maps.Equal(f, snap.Filter):
		return true
	default:
		return f != nil && !paging
	}
}

// pageRequest собирает запрос страницы; отсутствующие параметры берутся из текущего состояния.
func pageRequest(page, limit string, current store.PageState) (store.PageRequest, bool) {
	req := store.PageRequest{CurrentPage: current.CurrentPage, PageSize: current.PageSize}
	if page != "" {
		p, err := strconv.Atoi(page)
		if err != nil {
			return req, false
		}
		req.CurrentPage = p
	}
	if limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil {
			return req, false
		}
		req.PageSize = l
	}
	return req, true
}

// get — GET /{id}: загрузка записи, она становится выбранной.
func (c collection[T, C, U]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ws, ctx, cancel := c.h.workspace(r)
	defer cancel()
	s := c.pick(ws)

	item, err := s.FetchByID(ctx, id)
	if err != nil {
		c.h.writeStoreError(w, err, s.Snapshot().Error)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse{Item: c.view(item)})
}

// create — POST коллекции.
func (c collection[T, C, U]) create(w http.ResponseWriter, r *http.Request) {
	var payload C
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := payload.Validate(); err != nil {
		c.h.writeStoreError(w, err, "")
		return
	}

	ws, ctx, cancel := c.h.workspace(r)
	defer cancel()
	s := c.pick(ws)

	item, err := s.Create(ctx, payload)
	if err != nil {
		c.h.writeStoreError(w, err, s.Snapshot().Error)
		return
	}
	resp := itemResponse{Item: c.view(item), Message: s.Snapshot().Success}
	if c.after != nil {
		resp.Refreshed = c.after(ctx, ws, item)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// update — PUT /{id}.
func (c collection[T, C, U]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload U
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := payload.Validate(); err != nil {
		c.h.writeStoreError(w, err, "")
		return
	}

	ws, ctx, cancel := c.h.workspace(r)
	defer cancel()
	s := c.pick(ws)

	item, err := s.Update(ctx, id, payload)
	if err != nil {
		c.h.writeStoreError(w, err, s.Snapshot().Error)
		return
	}
	resp := itemResponse{Item: c.view(item), Message: s.Snapshot().Success}
	if c.after != nil {
		resp.Refreshed = c.after(ctx, ws, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// remove — DELETE /{id}.
func (c collection[T, C, U]) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ws, ctx, cancel := c.h.workspace(r)
	defer cancel()
	s := c.pick(ws)

	// Запись до удаления нужна для обновления связанных данных
	prev, known := s.Find(id)

	if err := s.Delete(ctx, id); err != nil {
		c.h.writeStoreError(w, err, s.Snapshot().Error)
		return
	}
	resp := itemResponse{Message: s.Snapshot().Success}
	if c.after != nil && known {
		resp.Refreshed = c.after(ctx, ws, prev)
	}
	writeJSON(w, http.StatusOK, resp)
}
