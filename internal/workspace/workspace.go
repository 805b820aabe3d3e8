// Пакет workspace — рабочее пространство сессии сотрудника.
// Workspace владеет хранилищами коллекций одной сессии, Registry хранит
// пространства активных сессий с TTL и закрывает их при вытеснении.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bigkaa/riskdesk/internal/apiclient"
	"github.com/bigkaa/riskdesk/internal/domain/model"
	"github.com/bigkaa/riskdesk/internal/store"
)

// Хранилища коллекций.
type (
	CustomerStore      = store.Store[model.Customer, model.CustomerForm, model.CustomerUpdate]
	CreditRequestStore = store.Store[model.CreditRequest, model.CreditRequestForm, model.CreditRequestUpdate]
	CustomerAssetStore = store.Store[model.CustomerAsset, model.CustomerAssetForm, model.CustomerAssetUpdate]
	UserStore          = store.Store[model.User, model.UserForm, model.UserUpdate]
	AssetStore         = store.Store[model.Asset, model.NoPayload, model.NoPayload]
	CreditStatusStore  = store.Store[model.CreditStatus, model.NoPayload, model.NoPayload]
	DocumentTypeStore  = store.Store[model.DocumentType, model.NoPayload, model.NoPayload]
)

// Имена хранилищ (совпадают с путями ресурсов API).
const (
	StoreCustomers      = apiclient.PathCustomers
	StoreCreditRequests = apiclient.PathCreditRequests
	StoreCustomerAssets = apiclient.PathCustomerAssets
	StoreUsers          = apiclient.PathUsers
	StoreAssets         = apiclient.PathAssets
	StoreCreditStatuses = apiclient.PathCreditStatuses
	StoreDocumentTypes  = apiclient.PathDocumentTypes
)

// Workspace — хранилища коллекций одной сессии.
type Workspace struct {
	// SessionID — идентификатор сессии-владельца
	SessionID string
	CreatedAt time.Time

	Customers      *CustomerStore
	CreditRequests *CreditRequestStore
	CustomerAssets *CustomerAssetStore
	Users          *UserStore
	Assets         *AssetStore
	CreditStatuses *CreditStatusStore
	DocumentTypes  *DocumentTypeStore

	creditRequestAPI store.Service[model.CreditRequest, model.CreditRequestForm, model.CreditRequestUpdate]
	token            string
	logger           *slog.Logger

	// ctx отменяется при Close: операции, начатые в пространстве, прерываются
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New создаёт пространство сессии.
// client — клиент API без токена, токен сессии добавляется здесь.
// pageSize — начальный размер страницы для всех хранилищ.
func New(sessionID, token string, client *apiclient.Client, pageSize int, logger *slog.Logger) *Workspace {
	api := client.WithToken(apiclient.StaticToken(token))
	logger = logger.With(slog.String("session_id", sessionID))

	creditRequests := apiclient.NewResource[model.CreditRequest, model.CreditRequestForm, model.CreditRequestUpdate](api, apiclient.PathCreditRequests)

	ctx, cancel := context.WithCancel(context.Background())
	return &Workspace{
		SessionID: sessionID,
		CreatedAt: time.Now(),
		Customers: newStore[model.Customer, model.CustomerForm, model.CustomerUpdate](
			api, StoreCustomers, store.CustomerMessages, pageSize, logger),
		CreditRequests: store.New[model.CreditRequest, model.CreditRequestForm, model.CreditRequestUpdate](
			creditRequests, storeOptions(StoreCreditRequests, store.CreditRequestMessages, pageSize, logger)),
		CustomerAssets: newStore[model.CustomerAsset, model.CustomerAssetForm, model.CustomerAssetUpdate](
			api, StoreCustomerAssets, store.CustomerAssetMessages, pageSize, logger),
		Users: newStore[model.User, model.UserForm, model.UserUpdate](
			api, StoreUsers, store.UserMessages, pageSize, logger),
		Assets: newStore[model.Asset, model.NoPayload, model.NoPayload](
			api, StoreAssets, store.AssetMessages, pageSize, logger),
		CreditStatuses: newStore[model.CreditStatus, model.NoPayload, model.NoPayload](
			api, StoreCreditStatuses, store.CreditStatusMessages, pageSize, logger),
		DocumentTypes: newStore[model.DocumentType, model.NoPayload, model.NoPayload](
			api, StoreDocumentTypes, store.DocumentTypeMessages, pageSize, logger),
		creditRequestAPI: creditRequests,
		token:            token,
		logger:           logger.With(slog.String("component", "workspace")),
		ctx:              ctx,
		cancel:           cancel,
	}
}

// newStore создаёт хранилище поверх ресурса API с тем же именем.
func newStore[T store.Entity, C, U any](
	api *apiclient.Client,
	name string,
	msgs store.Messages,
	pageSize int,
	logger *slog.Logger,
) *store.Store[T, C, U] {
	return store.New[T, C, U](apiclient.NewResource[T, C, U](api, name), storeOptions(name, msgs, pageSize, logger))
}

func storeOptions(name string, msgs store.Messages, pageSize int, logger *slog.Logger) store.Options {
	return store.Options{Name: name, PageSize: pageSize, Messages: msgs, Logger: logger}
}

// Bind возвращает контекст запроса, который отменяется также при закрытии
// пространства. cancel обязательно вызывать.
func (w *Workspace) Bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(w.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Close закрывает пространство. Незавершённые операции отменяются. Идемпотентен.
func (w *Workspace) Close() {
	w.closeOnce.Do(func() {
		w.cancel()
		w.logger.Debug("Пространство сессии закрыто",
			slog.Duration("lifetime", time.Since(w.CreatedAt)),
		)
	})
}

// Closed — закрыто ли пространство.
func (w *Workspace) Closed() bool {
	return w.ctx.Err() != nil
}

// RefreshCreditRequest заново получает заявку из API и вносит её в хранилище
// заявок. Вызывается после изменения имущества заявки: API пересчитывает
// скоринг и итоговые суммы.
func (w *Workspace) RefreshCreditRequest(ctx context.Context, id uint) (model.CreditRequest, error) {
	cr, err := w.creditRequestAPI.Get(ctx, id)
	if err != nil {
		return model.CreditRequest{}, fmt.Errorf("обновление заявки %d: %w", id, err)
	}
	w.CreditRequests.Merge(cr)
	return cr, nil
}

// Resetter — хранилище, у которого можно сбросить сообщения.
type Resetter interface {
	Name() string
	ResetStatus()
}

// Store возвращает хранилище по имени.
func (w *Workspace) Store(name string) (Resetter, bool) {
	switch name {
	case StoreCustomers:
		return w.Customers, true
	case StoreCreditRequests:
		return w.CreditRequests, true
	case StoreCustomerAssets:
		return w.CustomerAssets, true
	case StoreUsers:
		return w.Users, true
	case StoreAssets:
		return w.Assets, true
	case StoreCreditStatuses:
		return w.CreditStatuses, true
	case StoreDocumentTypes:
		return w.DocumentTypes, true
	default:
		return nil, false
	}
}

// StoreSummary — краткое состояние хранилища для главной страницы.
type StoreSummary struct {
	Loaded bool `json:"loaded"`
	Total  int  `json:"total"`
}

// Summary возвращает состояние всех хранилищ пространства.
func (w *Workspace) Summary() map[string]StoreSummary {
	return map[string]StoreSummary{
		StoreCustomers:      summarize(w.Customers.Snapshot()),
		StoreCreditRequests: summarize(w.CreditRequests.Snapshot()),
		StoreCustomerAssets: summarize(w.CustomerAssets.Snapshot()),
		StoreUsers:          summarize(w.Users.Snapshot()),
		StoreAssets:         summarize(w.Assets.Snapshot()),
		StoreCreditStatuses: summarize(w.CreditStatuses.Snapshot()),
		StoreDocumentTypes:  summarize(w.DocumentTypes.Snapshot()),
	}
}

func summarize[T store.Entity](snap store.Snapshot[T]) StoreSummary {
	return StoreSummary{Loaded: snap.Loaded, Total: snap.Page.TotalCount}
}
