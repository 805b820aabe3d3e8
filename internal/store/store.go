// Пакет store — клиентский кэш коллекций сущностей с постраничным выводом.
// Store держит полный набор записей, полученный от удалённого API, выводит из него
// видимую страницу и поддерживает обе выборки в согласованном состоянии после
// create/update/delete без повторной загрузки списка.
package store

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultPageSize — размер страницы по умолчанию.
const DefaultPageSize = 10

// Ошибки Store.
var (
	// ErrBusy — в хранилище уже выполняется изменяющая операция.
	ErrBusy = errors.New("хранилище занято другой операцией изменения")
	// ErrInvalidPageSize — размер страницы меньше 1.
	ErrInvalidPageSize = errors.New("размер страницы должен быть положительным")
)

// Entity — запись с уникальным числовым идентификатором.
type Entity interface {
	EntityID() uint
}

// Filter — фильтр по внешнему ключу (например, customerId=7).
// Пустой фильтр означает полный список.
type Filter map[string]string

// Service — удалённый источник данных одной коллекции.
type Service[T Entity, C, U any] interface {
	List(ctx context.Context, filter Filter) ([]T, error)
	Get(ctx context.Context, id uint) (T, error)
	Create(ctx context.Context, payload C) (T, error)
	Update(ctx context.Context, id uint, payload U) (T, error)
	Delete(ctx context.Context, id uint) error
}

// UserMessenger — ошибка, несущая готовое сообщение для пользователя.
// Store предпочитает его тексту по умолчанию из Messages.
type UserMessenger interface {
	UserMessage() string
}

// PageState — состояние постраничного вывода.
type PageState struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalCount  int `json:"totalCount"`
	LastPage    int `json:"lastPage"`
}

// PageRequest — запрос страницы.
type PageRequest struct {
	CurrentPage int
	PageSize    int
}

// LoadingFlags — операции, которые выполняются в данный момент.
type LoadingFlags struct {
	Fetching bool `json:"fetching"`
	Creating bool `json:"creating"`
	Updating bool `json:"updating"`
	Deleting bool `json:"deleting"`
}

// Options — параметры создания Store.
type Options struct {
	// Name — имя коллекции для логов и метрик (customers, users, ...)
	Name string
	// PageSize — начальный размер страницы (0 → DefaultPageSize)
	PageSize int
	// Messages — тексты результатов операций
	Messages Messages
	Logger   *slog.Logger
}

// Store — кэш одной коллекции. Безопасен для конкурентного использования:
// состояние защищено мьютексом, изменяющие операции не пересекаются (ErrBusy).
type Store[T Entity, C, U any] struct {
	name     string
	service  Service[T, C, U]
	messages Messages
	logger   *slog.Logger

	// mutation — не более одной изменяющей операции одновременно
	mutation *semaphore.Weighted

	mu       sync.RWMutex
	all      []T
	visible  []T
	selected *T
	page     PageState
	loading  LoadingFlags
	// fetches — число незавершённых загрузок (Fetching = fetches > 0)
	fetches  int
	loaded   bool
	// filter — фильтр последней успешной загрузки (nil — полный список)
	filter   Filter
	lastErr  string
	lastOK   string
}

// New создаёт Store поверх сервиса svc.
func New[T Entity, C, U any](svc Service[T, C, U], opts Options) *Store[T, C, U] {
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[T, C, U]{
		name:     opts.Name,
		service:  svc,
		messages: opts.Messages.withDefaults(),
		logger:   logger.With(slog.String("component", "store"), slog.String("store", opts.Name)),
		mutation: semaphore.NewWeighted(1),
		all:      []T{},
		visible:  []T{},
		page: PageState{
			CurrentPage: 1,
			PageSize:    pageSize,
			LastPage:    1,
		},
	}
}

// Name возвращает имя коллекции.
func (s *Store[T, C, U]) Name() string {
	return s.name
}

// Snapshot — копия модели чтения Store.
type Snapshot[T Entity] struct {
	Items    []T          `json:"items"`
	All      []T          `json:"-"`
	Selected *T           `json:"selected,omitempty"`
	Page     PageState    `json:"page"`
	Loading  LoadingFlags `json:"loading"`
	// Loaded — был ли хотя бы один успешный FetchAll.
	// Отличает «загружено, пусто» от «ещё не загружено».
	Loaded   bool         `json:"loaded"`
	// Filter — фильтр, с которым загружен полный набор (nil — без фильтра).
	Filter   Filter       `json:"filter,omitempty"`
	Error    string       `json:"error,omitempty"`
	Success  string       `json:"success,omitempty"`
}

// Snapshot возвращает текущее состояние. Срезы скопированы.
func (s *Store[T, C, U]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot[T]{
		Items:   append([]T{}, s.visible...),
		All:     append([]T{}, s.all...),
		Page:    s.page,
		Loading: s.loading,
		Loaded:  s.loaded,
		Filter:  maps.Clone(s.filter),
		Error:   s.lastErr,
		Success: s.lastOK,
	}
	if s.selected != nil {
		sel := *s.selected
		snap.Selected = &sel
	}
	return snap
}

// Find ищет запись в полном наборе по id.
func (s *Store[T, C, U]) Find(id uint) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.all, id); i >= 0 {
		return s.all[i], true
	}
	var zero T
	return zero, false
}

// ResetStatus сбрасывает последние сообщения об ошибке и успехе.
func (s *Store[T, C, U]) ResetStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastErr = ""
	s.lastOK = ""
}

// indexOf возвращает позицию записи с id или -1.
func indexOf[T Entity](items []T, id uint) int {
	for i, item := range items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

// errorMessage возвращает сообщение ошибки для пользователя или fallback.
func errorMessage(err error, fallback string) string {
	var um UserMessenger
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}

// acquireMutation занимает слот изменяющей операции без ожидания.
func (s *Store[T, C, U]) acquireMutation(op string) error {
	if !s.mutation.TryAcquire(1) {
		storeOperationsTotal.WithLabelValues(s.name, op, resultBusy).Inc()
		s.logger.Warn("Операция отклонена: хранилище занято", slog.String("operation", op))
		return ErrBusy
	}
	return nil
}
