package store

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"
)

// Имена операций для логов и метрик.
const (
	opFetchAll  = "fetch_all"
	opFetchByID = "fetch_by_id"
	opCreate    = "create"
	opUpdate    = "update"
	opDelete    = "delete"
)

// FetchAll загружает коллекцию (с фильтром по внешнему ключу или без) и
// заменяет ею полный набор. Текущая страница и размер страницы сохраняются,
// номер страницы приводится к новому диапазону.
func (s *Store[T, C, U]) FetchAll(ctx context.Context, filter Filter) error {
	start := time.Now()
	s.beginFetch()
	defer s.endFetch()

	items, err := s.service.List(ctx, filter)
	s.observe(opFetchAll, start, err)
	if err != nil {
		fallback := s.messages.FetchError
		if len(filter) > 0 {
			fallback = s.messages.FetchFilteredError
		}
		s.fail(opFetchAll, err, fallback)
		return fmt.Errorf("%s: загрузка списка: %w", s.name, err)
	}

	unique := dedupe(items)

	s.mu.Lock()
	s.all = unique
	s.filter = cloneFilter(filter)
	s.loaded = true
	s.recomputeLocked(true)
	s.mu.Unlock()

	s.logger.Debug("Коллекция загружена",
		slog.Int("count", len(unique)),
		slog.Any("filter", filter),
	)
	return nil
}

// FetchByID загружает одну запись и делает её выбранной.
// Полный набор и видимая страница не меняются.
func (s *Store[T, C, U]) FetchByID(ctx context.Context, id uint) (T, error) {
	start := time.Now()
	s.beginFetch()
	defer s.endFetch()

	item, err := s.service.Get(ctx, id)
	s.observe(opFetchByID, start, err)
	if err != nil {
		s.fail(opFetchByID, err, s.messages.FetchOneError)
		var zero T
		return zero, fmt.Errorf("%s: загрузка записи %d: %w", s.name, id, err)
	}

	s.mu.Lock()
	s.selected = &item
	s.mu.Unlock()
	return item, nil
}

// Create создаёт запись и добавляет её в начало полного набора.
// Страница не меняется: новая запись видна, только если открыта первая страница.
func (s *Store[T, C, U]) Create(ctx context.Context, payload C) (T, error) {
	var zero T
	if err := s.acquireMutation(opCreate); err != nil {
		return zero, err
	}
	defer s.mutation.Release(1)

	start := time.Now()
	s.setLoading(func(l *LoadingFlags) { l.Creating = true }, true)
	defer s.setLoading(func(l *LoadingFlags) { l.Creating = false }, false)

	item, err := s.service.Create(ctx, payload)
	s.observe(opCreate, start, err)
	if err != nil {
		s.fail(opCreate, err, s.messages.CreateError)
		return zero, fmt.Errorf("%s: создание записи: %w", s.name, err)
	}

	s.commit(func() {
		s.all = prepend(s.all, item)
		s.recomputeLocked(false)
		s.lastOK = s.messages.CreateSuccess
	})

	s.logger.Info("Запись создана", slog.Uint64("id", uint64(item.EntityID())))
	return item, nil
}

// Update обновляет запись. Найденная в полном наборе запись заменяется на месте,
// иначе результат добавляется в начало. Результат становится выбранной записью.
func (s *Store[T, C, U]) Update(ctx context.Context, id uint, payload U) (T, error) {
	var zero T
	if err := s.acquireMutation(opUpdate); err != nil {
		return zero, err
	}
	defer s.mutation.Release(1)

	start := time.Now()
	s.setLoading(func(l *LoadingFlags) { l.Updating = true }, true)
	defer s.setLoading(func(l *LoadingFlags) { l.Updating = false }, false)

	item, err := s.service.Update(ctx, id, payload)
	s.observe(opUpdate, start, err)
	if err != nil {
		s.fail(opUpdate, err, s.messages.UpdateError)
		return zero, fmt.Errorf("%s: обновление записи %d: %w", s.name, id, err)
	}

	s.commit(func() {
		s.all = replaceOrPrepend(s.all, id, item)
		s.selected = &item
		s.recomputeLocked(false)
		s.lastOK = s.messages.UpdateSuccess
	})

	s.logger.Info("Запись обновлена", slog.Uint64("id", uint64(id)))
	return item, nil
}

// Delete удаляет запись. Порядок остальных записей сохраняется,
// текущая страница приводится к новой последней странице.
func (s *Store[T, C, U]) Delete(ctx context.Context, id uint) error {
	if err := s.acquireMutation(opDelete); err != nil {
		return err
	}
	defer s.mutation.Release(1)

	start := time.Now()
	s.setLoading(func(l *LoadingFlags) { l.Deleting = true }, true)
	defer s.setLoading(func(l *LoadingFlags) { l.Deleting = false }, false)

	err := s.service.Delete(ctx, id)
	s.observe(opDelete, start, err)
	if err != nil {
		s.fail(opDelete, err, s.messages.DeleteError)
		return fmt.Errorf("%s: удаление записи %d: %w", s.name, id, err)
	}

	s.commit(func() {
		s.all = remove(s.all, id)
		if s.selected != nil && (*s.selected).EntityID() == id {
			s.selected = nil
		}
		s.recomputeLocked(true)
		s.lastOK = s.messages.DeleteSuccess
	})

	s.logger.Info("Запись удалена", slog.Uint64("id", uint64(id)))
	return nil
}

// Merge вносит запись, полученную вне Store (например, заявку, пересчитанную
// API после изменения её имущества): замена на месте или добавление в начало.
// Сообщения о результате не меняются.
func (s *Store[T, C, U]) Merge(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := item.EntityID()
	s.all = replaceOrPrepend(s.all, id, item)
	if s.selected != nil && (*s.selected).EntityID() == id {
		s.selected = &item
	}
	s.recomputeLocked(false)
}

// commit применяет изменение состояния под s.mu.
func (s *Store[T, C, U]) commit(apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply()
}

// cloneFilter копирует фильтр; пустой фильтр хранится как nil.
func cloneFilter(f Filter) Filter {
	if len(f) == 0 {
		return nil
	}
	return maps.Clone(f)
}

// beginFetch отмечает начало загрузки и сбрасывает последнюю ошибку.
func (s *Store[T, C, U]) beginFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches++
	s.loading.Fetching = true
	s.lastErr = ""
}

// endFetch снимает флаг загрузки при любом исходе.
func (s *Store[T, C, U]) endFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches--
	s.loading.Fetching = s.fetches > 0
}

// setLoading меняет флаг изменяющей операции. При старте операции
// сбрасываются последние сообщения.
func (s *Store[T, C, U]) setLoading(set func(*LoadingFlags), starting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set(&s.loading)
	if starting {
		s.lastErr = ""
		s.lastOK = ""
	}
}

// fail сохраняет сообщение об ошибке операции.
func (s *Store[T, C, U]) fail(op string, err error, fallback string) {
	msg := errorMessage(err, fallback)

	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()

	s.logger.Warn("Ошибка операции хранилища",
		slog.String("operation", op),
		slog.String("message", msg),
		slog.String("error", err.Error()),
	)
}

// dedupe убирает повторы id, оставляя первое вхождение.
func dedupe[T Entity](items []T) []T {
	seen := make(map[uint]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		id := item.EntityID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, item)
	}
	return out
}

// prepend возвращает новый срез с item в начале.
// Повтор id (API вернул уже известную запись) убирается.
func prepend[T Entity](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	for _, it := range items {
		if it.EntityID() != item.EntityID() {
			out = append(out, it)
		}
	}
	return out
}

// replaceOrPrepend заменяет запись с id на item на той же позиции
// или добавляет item в начало, если записи нет.
func replaceOrPrepend[T Entity](items []T, id uint, item T) []T {
	i := indexOf(items, id)
	if i < 0 {
		return prepend(items, item)
	}
	out := append([]T{}, items...)
	out[i] = item
	return out
}

// remove возвращает новый срез без записи с id.
func remove[T Entity](items []T, id uint) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.EntityID() != id {
			out = append(out, it)
		}
	}
	return out
}
