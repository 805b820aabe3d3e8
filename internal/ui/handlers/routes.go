package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/riskdesk/internal/domain/model"
	"github.com/bigkaa/riskdesk/internal/store"
	"github.com/bigkaa/riskdesk/internal/workspace"
)

// creditRequestView — заявка с уровнем риска и подписью статуса.
type creditRequestView struct {
	model.CreditRequest
	RiskLevel   string `json:"riskLevel"`
	StatusLabel string `json:"statusLabel"`
}

func presentCreditRequest(cr model.CreditRequest) any {
	return creditRequestView{
		CreditRequest: cr,
		RiskLevel:     model.RiskLevel(cr.RiskScore),
		StatusLabel:   model.CreditStatusLabel(cr.CreditStatusID),
	}
}

// parentFilter — фильтр коллекции по id родителя из пути.
func parentFilter(key string) func(*http.Request) (store.Filter, bool) {
	return func(r *http.Request) (store.Filter, bool) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id == 0 {
			return nil, false
		}
		return store.Filter{key: strconv.FormatUint(id, 10)}, true
	}
}

// refreshParentRequest обновляет заявку, к которой относится имущество:
// API пересчитывает её скоринг после изменения обеспечения.
// Ошибка обновления не отменяет успешную операцию с имуществом.
func (h *Handler) refreshParentRequest(ctx context.Context, ws *workspace.Workspace, asset model.CustomerAsset) any {
	if asset.CreditRequestID == 0 {
		return nil
	}
	cr, err := ws.RefreshCreditRequest(ctx, asset.CreditRequestID)
	if err != nil {
		h.logger.Warn("Не удалось обновить заявку после изменения имущества",
			slog.Uint64("credit_request_id", uint64(asset.CreditRequestID)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return presentCreditRequest(cr)
}

// Routes регистрирует маршруты панели (относительно /manager).
// Сессия и доступ роли проверяются middleware снаружи.
func (h *Handler) Routes(r chi.Router) {
	customers := collection[model.Customer, model.CustomerForm, model.CustomerUpdate]{
		h:    h,
		pick: func(ws *workspace.Workspace) *workspace.CustomerStore { return ws.Customers },
	}
	users := collection[model.User, model.UserForm, model.UserUpdate]{
		h:    h,
		pick: func(ws *workspace.Workspace) *workspace.UserStore { return ws.Users },
	}
	creditRequests := collection[model.CreditRequest, model.CreditRequestForm, model.CreditRequestUpdate]{
		h:       h,
		pick:    func(ws *workspace.Workspace) *workspace.CreditRequestStore { return ws.CreditRequests },
		present: presentCreditRequest,
	}
	customerAssets := collection[model.CustomerAsset, model.CustomerAssetForm, model.CustomerAssetUpdate]{
		h:     h,
		pick:  func(ws *workspace.Workspace) *workspace.CustomerAssetStore { return ws.CustomerAssets },
		after: h.refreshParentRequest,
	}
	assets := collection[model.Asset, model.NoPayload, model.NoPayload]{
		h:    h,
		pick: func(ws *workspace.Workspace) *workspace.AssetStore { return ws.Assets },
	}
	creditStatuses := collection[model.CreditStatus, model.NoPayload, model.NoPayload]{
		h:    h,
		pick: func(ws *workspace.Workspace) *workspace.CreditStatusStore { return ws.CreditStatuses },
	}
	documentTypes := collection[model.DocumentType, model.NoPayload, model.NoPayload]{
		h:    h,
		pick: func(ws *workspace.Workspace) *workspace.DocumentTypeStore { return ws.DocumentTypes },
	}

	r.Get("/me", h.Me)
	r.Get("/home", h.Home)

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", customers.list(nil))
		r.Post("/", customers.create)
		r.Post("/status/reset", h.ResetStatus(workspace.StoreCustomers))
		r.Get("/{id}", customers.get)
		r.Put("/{id}", customers.update)
		r.Delete("/{id}", customers.remove)
		r.Get("/{id}/credit-requests", creditRequests.list(parentFilter("customerId")))
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", users.list(nil))
		r.Post("/", users.create)
		r.Post("/status/reset", h.ResetStatus(workspace.StoreUsers))
		r.Get("/{id}", users.get)
		r.Put("/{id}", users.update)
		r.Delete("/{id}", users.remove)
	})

	r.Route("/credit-requests", func(r chi.Router) {
		r.Post("/", creditRequests.create)
		r.Post("/status/reset", h.ResetStatus(workspace.StoreCreditRequests))
		r.Get("/{id}", creditRequests.get)
		r.Put("/{id}", creditRequests.update)
		r.Delete("/{id}", creditRequests.remove)
		r.Get("/{id}/assets", customerAssets.list(parentFilter("creditRequestId")))
	})

	r.Route("/customer-assets", func(r chi.Router) {
		r.Post("/", customerAssets.create)
		r.Post("/status/reset", h.ResetStatus(workspace.StoreCustomerAssets))
		r.Get("/{id}", customerAssets.get)
		r.Put("/{id}", customerAssets.update)
		r.Delete("/{id}", customerAssets.remove)
	})

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/assets", assets.list(nil))
		r.Get("/credit-statuses", creditStatuses.list(nil))
		r.Get("/document-types", documentTypes.list(nil))
	})
}
