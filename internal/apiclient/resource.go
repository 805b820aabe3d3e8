package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bigkaa/riskdesk/internal/store"
)

// Пути ресурсов API.
const (
	PathCustomers      = "customers"
	PathCreditRequests = "credit-requests"
	PathCustomerAssets = "customer-assets"
	PathUsers          = "users"
	PathAssets         = "assets"
	PathCreditStatuses = "credit-statuses"
	PathDocumentTypes  = "document-types"
)

// Resource — CRUD одного ресурса API. Реализует store.Service.
type Resource[T store.Entity, C, U any] struct {
	client *Client
	path   string
}

// NewResource создаёт ресурс по пути path относительно базового URL.
func NewResource[T store.Entity, C, U any](client *Client, path string) *Resource[T, C, U] {
	return &Resource[T, C, U]{client: client, path: path}
}

// List возвращает коллекцию. Фильтр передаётся query-параметрами
// (customerId, creditRequestId).
// GET {path}?{filter}
func (r *Resource[T, C, U]) List(ctx context.Context, filter store.Filter) ([]T, error) {
	var query url.Values
	if len(filter) > 0 {
		query = url.Values{}
		for k, v := range filter {
			query.Set(k, v)
		}
	}

	var items []T
	if err := r.client.send(ctx, http.MethodGet, r.path, r.path, query, nil, &items, true); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get возвращает запись по id.
// GET {path}/{id}
func (r *Resource[T, C, U]) Get(ctx context.Context, id uint) (T, error) {
	var item T
	err := r.client.send(ctx, http.MethodGet, r.path, r.itemPath(id), nil, nil, &item, true)
	return item, err
}

// Create создаёт запись.
// POST {path}
func (r *Resource[T, C, U]) Create(ctx context.Context, payload C) (T, error) {
	var item T
	err := r.client.send(ctx, http.MethodPost, r.path, r.path, nil, payload, &item, true)
	return item, err
}

// Update обновляет запись.
// PUT {path}/{id}
func (r *Resource[T, C, U]) Update(ctx context.Context, id uint, payload U) (T, error) {
	var item T
	err := r.client.send(ctx, http.MethodPut, r.path, r.itemPath(id), nil, payload, &item, true)
	return item, err
}

// Delete удаляет запись.
// DELETE {path}/{id} → {message}
func (r *Resource[T, C, U]) Delete(ctx context.Context, id uint) error {
	var resp struct {
		Message string `json:"message"`
	}
	if err := r.client.send(ctx, http.MethodDelete, r.path, r.itemPath(id), nil, nil, &resp, true); err != nil {
		return err
	}
	r.client.logger.Debug("Запись удалена в API",
		slog.String("resource", r.path),
		slog.Uint64("id", uint64(id)),
		slog.String("message", resp.Message),
	)
	return nil
}

func (r *Resource[T, C, U]) itemPath(id uint) string {
	return r.path + "/" + strconv.FormatUint(uint64(id), 10)
}
