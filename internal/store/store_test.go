package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// item — тестовая сущность.
type item struct {
	ID   uint
	Name string
}

func (i item) EntityID() uint { return i.ID }

type itemForm struct{ Name string }

// msgError — ошибка с сообщением для пользователя, как у клиента API.
type msgError struct{ msg string }

func (e *msgError) Error() string       { return "remote: " + e.msg }
func (e *msgError) UserMessage() string { return e.msg }

// fakeService — сервис коллекции в памяти.
type fakeService struct {
	mu      sync.Mutex
	items   []item
	nextID  uint
	err     error
	filters []Filter

	// block — если задан, Create ждёт закрытия канала
	block   chan struct{}
	started chan struct{}
}

func newFakeService(items ...item) *fakeService {
	return &fakeService{items: items, nextID: 100}
}

func (f *fakeService) List(_ context.Context, filter Filter) ([]item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return append([]item{}, f.items...), nil
}

func (f *fakeService) Get(_ context.Context, id uint) (item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return item{}, f.err
	}
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return item{}, &msgError{msg: "no encontrado"}
}

func (f *fakeService) Create(_ context.Context, p itemForm) (item, error) {
	if f.block != nil {
		close(f.started)
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return item{}, f.err
	}
	f.nextID++
	it := item{ID: f.nextID, Name: p.Name}
	f.items = append([]item{it}, f.items...)
	return it, nil
}

func (f *fakeService) Update(_ context.Context, id uint, p itemForm) (item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return item{}, f.err
	}
	return item{ID: id, Name: p.Name}, nil
}

func (f *fakeService) Delete(_ context.Context, _ uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, svc *fakeService, pageSize int) *Store[item, itemForm, itemForm] {
	t.Helper()
	return New[item, itemForm, itemForm](svc, Options{
		Name:     "items",
		PageSize: pageSize,
		Messages: CustomerMessages,
		Logger:   testLogger(),
	})
}

func items(ids ...uint) []item {
	out := make([]item, 0, len(ids))
	for _, id := range ids {
		out = append(out, item{ID: id})
	}
	return out
}

func ids(list []item) []uint {
	out := make([]uint, 0, len(list))
	for _, it := range list {
		out = append(out, it.ID)
	}
	return out
}

// loadedStore — Store с уже загруженными записями.
func loadedStore(t *testing.T, pageSize int, list ...uint) (*Store[item, itemForm, itemForm], *fakeService) {
	t.Helper()
	svc := newFakeService(items(list...)...)
	s := newTestStore(t, svc, pageSize)
	if err := s.FetchAll(context.Background(), nil); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	return s, svc
}

func TestNew_Defaults(t *testing.T) {
	s := newTestStore(t, newFakeService(), 0)
	snap := s.Snapshot()

	want := PageState{CurrentPage: 1, PageSize: DefaultPageSize, TotalCount: 0, LastPage: 1}
	if diff := cmp.Diff(want, snap.Page); diff != "" {
		t.Errorf("начальное PageState (-want +got):\n%s", diff)
	}
	if snap.Loaded {
		t.Error("новое хранилище не должно считаться загруженным")
	}
	if len(snap.Items) != 0 || len(snap.All) != 0 {
		t.Errorf("ожидались пустые выборки, получено %v / %v", snap.Items, snap.All)
	}
}

func TestFetchAll_EmptyCollection(t *testing.T) {
	s, _ := loadedStore(t, 10)
	snap := s.Snapshot()

	if snap.Page.TotalCount != 0 || snap.Page.LastPage != 1 {
		t.Errorf("PageState = %+v, хотели total=0 lastPage=1", snap.Page)
	}
	if len(snap.Items) != 0 {
		t.Errorf("Items = %v, ожидался пустой список", snap.Items)
	}
	if !snap.Loaded {
		t.Error("после успешной загрузки Loaded должен быть true")
	}
	if snap.Loading.Fetching {
		t.Error("флаг fetching не снят")
	}
}

func TestFetchAll_KeepsServerOrderAndDropsDuplicates(t *testing.T) {
	svc := newFakeService(item{ID: 3}, item{ID: 1, Name: "first"}, item{ID: 2}, item{ID: 1, Name: "dup"})
	s := newTestStore(t, svc, 10)

	if err := s.FetchAll(context.Background(), nil); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	snap := s.Snapshot()
	if diff := cmp.Diff([]uint{3, 1, 2}, ids(snap.All)); diff != "" {
		t.Errorf("порядок all (-want +got):\n%s", diff)
	}
	if snap.All[1].Name != "first" {
		t.Errorf("при повторе id должна остаться первая запись, получено %q", snap.All[1].Name)
	}
}

func TestFetchAll_PassesFilter(t *testing.T) {
	svc := newFakeService()
	s := newTestStore(t, svc, 10)

	if err := s.FetchAll(context.Background(), Filter{"customerId": "7"}); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(svc.filters) != 1 || svc.filters[0]["customerId"] != "7" {
		t.Errorf("фильтр не передан сервису: %v", svc.filters)
	}
}

func TestFetchAll_RecordsFilter(t *testing.T) {
	svc := newFakeService(items(1, 2)...)
	s := newTestStore(t, svc, 10)

	f := Filter{"customerId": "7"}
	if err := s.FetchAll(context.Background(), f); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	f["customerId"] = "8"
	if diff := cmp.Diff(Filter{"customerId": "7"}, s.Snapshot().Filter); diff != "" {
		t.Errorf("Filter (-want +got):\n%s", diff)
	}

	// неудачная загрузка не меняет записанный фильтр
	svc.err = errors.New("boom")
	_ = s.FetchAll(context.Background(), Filter{"customerId": "9"})
	if got := s.Snapshot().Filter["customerId"]; got != "7" {
		t.Errorf("после ошибки customerId = %q, хотели 7", got)
	}

	svc.err = nil
	if err := s.FetchAll(context.Background(), nil); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if got := s.Snapshot().Filter; got != nil {
		t.Errorf("полный список: Filter = %v, хотели nil", got)
	}
}

func TestFetchAll_KeepsCurrentPage(t *testing.T) {
	s, svc := loadedStore(t, 2, 1, 2, 3, 4, 5)
	if err := s.Paginate(PageRequest{CurrentPage: 2, PageSize: 2}); err != nil {
		t.Fatalf("Paginate: %v", err)
	}

	svc.items = items(10, 11, 12, 13)
	if err := s.FetchAll(context.Background(), nil); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	snap := s.Snapshot()
	if snap.Page.CurrentPage != 2 {
		t.Errorf("CurrentPage = %d, хотели 2 (страница не сбрасывается)", snap.Page.CurrentPage)
	}
	if diff := cmp.Diff([]uint{12, 13}, ids(snap.Items)); diff != "" {
		t.Errorf("visible (-want +got):\n%s", diff)
	}
}

func TestFetchAll_ClampsPageWhenCollectionShrinks(t *testing.T) {
	s, svc := loadedStore(t, 2, 1, 2, 3, 4, 5)
	if err := s.Paginate(PageRequest{CurrentPage: 3, PageSize: 2}); err != nil {
		t.Fatalf("Paginate: %v", err)
	}

	svc.items = items(1, 2)
	if err := s.FetchAll(context.Background(), nil); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	snap := s.Snapshot()
	if snap.Page.CurrentPage != 1 || snap.Page.LastPage != 1 {
		t.Errorf("PageState = %+v, хотели currentPage=1 lastPage=1", snap.Page)
	}
}

func TestFetchAll_Failure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		filter  Filter
		wantMsg string
	}{
		{
			name:    "сообщение удалённой стороны",
			err:     &msgError{msg: "token inválido"},
			wantMsg: "token inválido",
		},
		{
			name:    "сообщение по умолчанию",
			err:     errors.New("boom"),
			wantMsg: "Error al obtener clientes",
		},
		{
			name:    "сообщение по умолчанию для фильтра",
			err:     errors.New("boom"),
			filter:  Filter{"customerId": "1"},
			wantMsg: "Error al obtener clientes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, svc := loadedStore(t, 10, 1, 2)
			svc.err = tt.err

			err := s.FetchAll(context.Background(), tt.filter)
			if !errors.Is(err, tt.err) {
				t.Fatalf("ожидалась обёрнутая ошибка сервиса, получено %v", err)
			}
			snap := s.Snapshot()
			if snap.Error != tt.wantMsg {
				t.Errorf("Error = %q, хотели %q", snap.Error, tt.wantMsg)
			}
			if snap.Loading.Fetching {
				t.Error("флаг fetching не снят после ошибки")
			}
			if diff := cmp.Diff([]uint{1, 2}, ids(snap.All)); diff != "" {
				t.Errorf("all изменился после ошибки (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchAll_FilteredFailureUsesOwnMessage(t *testing.T) {
	svc := newFakeService()
	svc.err = errors.New("boom")
	s := New[item, itemForm, itemForm](svc, Options{
		Name:     "credit-requests",
		Messages: CreditRequestMessages,
		Logger:   testLogger(),
	})

	_ = s.FetchAll(context.Background(), Filter{"customerId": "3"})
	if got := s.Snapshot().Error; got != "Error al obtener solicitudes de crédito del cliente" {
		t.Errorf("Error = %q", got)
	}
}

func TestFetchAll_ClearsPreviousError(t *testing.T) {
	s, svc := loadedStore(t, 10, 1)
	svc.err = errors.New("boom")
	_ = s.FetchAll(context.Background(), nil)

	svc.err = nil
	if err := s.FetchAll(context.Background(), nil); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if got := s.Snapshot().Error; got != "" {
		t.Errorf("Error = %q, ожидалась очистка", got)
	}
}

func TestFetchByID(t *testing.T) {
	s, _ := loadedStore(t, 10, 1, 2, 3)
	before := s.Snapshot()

	got, err := s.FetchByID(context.Background(), 2)
	if err != nil {
		t.Fatalf("FetchByID: %v", err)
	}
	if got.ID != 2 {
		t.Errorf("FetchByID вернул id=%d, хотели 2", got.ID)
	}
	after := s.Snapshot()
	if after.Selected == nil || after.Selected.ID != 2 {
		t.Errorf("Selected = %v, хотели id=2", after.Selected)
	}
	if diff := cmp.Diff(before.All, after.All); diff != "" {
		t.Errorf("FetchByID изменил all (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(before.Items, after.Items); diff != "" {
		t.Errorf("FetchByID изменил visible (-before +after):\n%s", diff)
	}
}

func TestFetchByID_Failure(t *testing.T) {
	s, _ := loadedStore(t, 10, 1)

	if _, err := s.FetchByID(context.Background(), 42); err == nil {
		t.Fatal("ожидалась ошибка для отсутствующей записи")
	}
	snap := s.Snapshot()
	if snap.Error != "no encontrado" {
		t.Errorf("Error = %q, хотели сообщение сервиса", snap.Error)
	}
	if snap.Selected != nil {
		t.Errorf("Selected = %v, ожидался nil", snap.Selected)
	}
}

func TestCreate_VisibleOnlyOnFirstPage(t *testing.T) {
	t.Run("первая страница", func(t *testing.T) {
		s, _ := loadedStore(t, 2, 1, 2, 3)

		created, err := s.Create(context.Background(), itemForm{Name: "nuevo"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		snap := s.Snapshot()
		if snap.Items[0].ID != created.ID {
			t.Errorf("новая запись не на позиции 0: %v", ids(snap.Items))
		}
		if snap.Success != "Cliente creado correctamente" {
			t.Errorf("Success = %q", snap.Success)
		}
		if snap.Page.TotalCount != 4 || snap.Page.LastPage != 2 {
			t.Errorf("PageState = %+v", snap.Page)
		}
	})

	t.Run("вторая страница", func(t *testing.T) {
		s, _ := loadedStore(t, 2, 1, 2, 3)
		if err := s.Paginate(PageRequest{CurrentPage: 2, PageSize: 2}); err != nil {
			t.Fatalf("Paginate: %v", err)
		}

		created, err := s.Create(context.Background(), itemForm{Name: "nuevo"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		snap := s.Snapshot()
		for _, it := range snap.Items {
			if it.ID == created.ID {
				t.Errorf("новая запись не должна быть видна на странице 2: %v", ids(snap.Items))
			}
		}
		if snap.All[0].ID != created.ID {
			t.Errorf("новая запись должна быть в начале all: %v", ids(snap.All))
		}
		if diff := cmp.Diff([]uint{2, 3}, ids(snap.Items)); diff != "" {
			t.Errorf("visible (-want +got):\n%s", diff)
		}
	})
}

func TestCreate_FailureLeavesAllUnchanged(t *testing.T) {
	s, svc := loadedStore(t, 10, 1, 2)
	svc.err = errors.New("boom")

	if _, err := s.Create(context.Background(), itemForm{}); err == nil {
		t.Fatal("ожидалась ошибка")
	}
	snap := s.Snapshot()
	if diff := cmp.Diff([]uint{1, 2}, ids(snap.All)); diff != "" {
		t.Errorf("all изменился (-want +got):\n%s", diff)
	}
	if snap.Error != "Error al crear cliente" {
		t.Errorf("Error = %q", snap.Error)
	}
	if snap.Success != "" {
		t.Errorf("Success = %q, ожидалась пустая строка", snap.Success)
	}
	if snap.Loading.Creating {
		t.Error("флаг creating не снят")
	}
}

func TestUpdate_ReplacesInPlace(t *testing.T) {
	s, _ := loadedStore(t, 10, 1, 2, 3)

	if _, err := s.Update(context.Background(), 2, itemForm{Name: "editado"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	snap := s.Snapshot()
	if diff := cmp.Diff([]uint{1, 2, 3}, ids(snap.All)); diff != "" {
		t.Errorf("порядок all (-want +got):\n%s", diff)
	}
	if snap.All[1].Name != "editado" {
		t.Errorf("запись не заменена: %+v", snap.All[1])
	}
	if snap.Items[1].Name != "editado" {
		t.Errorf("visible не пересчитан: %+v", snap.Items)
	}
	if snap.Selected == nil || snap.Selected.Name != "editado" {
		t.Errorf("Selected = %v", snap.Selected)
	}
	if snap.Success != "Cliente actualizado correctamente" {
		t.Errorf("Success = %q", snap.Success)
	}
}

func TestUpdate_UnknownIDPrepends(t *testing.T) {
	s, _ := loadedStore(t, 10, 1, 2)

	if _, err := s.Update(context.Background(), 9, itemForm{Name: "externo"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff([]uint{9, 1, 2}, ids(s.Snapshot().All)); diff != "" {
		t.Errorf("all (-want +got):\n%s", diff)
	}
}

func TestCreateThenUpdate_NoDuplicate(t *testing.T) {
	s, _ := loadedStore(t, 10, 1)

	created, err := s.Create(context.Background(), itemForm{Name: "a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Update(context.Background(), created.ID, itemForm{Name: "b"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	snap := s.Snapshot()
	if diff := cmp.Diff([]uint{created.ID, 1}, ids(snap.All)); diff != "" {
		t.Errorf("all (-want +got):\n%s", diff)
	}
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	s, _ := loadedStore(t, 10, 1, 2, 3, 4)

	if err := s.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	snap := s.Snapshot()
	if diff := cmp.Diff([]uint{1, 2, 4}, ids(snap.All)); diff != "" {
		t.Errorf("all (-want +got):\n%s", diff)
	}
	if snap.Page.TotalCount != 3 {
		t.Errorf("TotalCount = %d, хотели 3", snap.Page.TotalCount)
	}
	if snap.Success != "Cliente eliminado correctamente" {
		t.Errorf("Success = %q", snap.Success)
	}
}

func TestDelete_ClampsCurrentPage(t *testing.T) {
	s, _ := loadedStore(t, 2, 1, 2, 3)
	if err := s.Paginate(PageRequest{CurrentPage: 2, PageSize: 2}); err != nil {
		t.Fatalf("Paginate: %v", err)
	}

	if err := s.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	snap := s.Snapshot()
	if snap.Page.CurrentPage != 1 || snap.Page.LastPage != 1 {
		t.Errorf("PageState = %+v, хотели возврат на страницу 1", snap.Page)
	}
	if diff := cmp.Diff([]uint{1, 2}, ids(snap.Items)); diff != "" {
		t.Errorf("visible (-want +got):\n%s", diff)
	}
}

func TestDelete_Failure(t *testing.T) {
	s, svc := loadedStore(t, 10, 1, 2)
	svc.err = &msgError{msg: "tiene solicitudes asociadas"}

	if err := s.Delete(context.Background(), 1); err == nil {
		t.Fatal("ожидалась ошибка")
	}
	snap := s.Snapshot()
	if snap.Error != "tiene solicitudes asociadas" {
		t.Errorf("Error = %q", snap.Error)
	}
	if len(snap.All) != 2 {
		t.Errorf("запись удалена несмотря на ошибку: %v", ids(snap.All))
	}
}

func TestMutations_TotalMatchesAll(t *testing.T) {
	s, _ := loadedStore(t, 3, 1, 2, 3, 4)
	ctx := context.Background()

	steps := []func() error{
		func() error { _, err := s.Create(ctx, itemForm{}); return err },
		func() error { _, err := s.Update(ctx, 2, itemForm{Name: "x"}); return err },
		func() error { return s.Delete(ctx, 1) },
		func() error { _, err := s.Update(ctx, 77, itemForm{}); return err },
		func() error { return s.Delete(ctx, 4) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("шаг %d: %v", i, err)
		}
		snap := s.Snapshot()
		if snap.Page.TotalCount != len(snap.All) {
			t.Errorf("шаг %d: TotalCount=%d, len(all)=%d", i, snap.Page.TotalCount, len(snap.All))
		}
		if want := lastPage(len(snap.All), snap.Page.PageSize); snap.Page.LastPage != want {
			t.Errorf("шаг %d: LastPage=%d, хотели %d", i, snap.Page.LastPage, want)
		}
	}
}

func TestMutation_BusyGuard(t *testing.T) {
	s, svc := loadedStore(t, 10, 1, 2)
	svc.block = make(chan struct{})
	svc.started = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := s.Create(context.Background(), itemForm{Name: "lento"})
		done <- err
	}()
	<-svc.started

	if !s.Snapshot().Loading.Creating {
		t.Error("флаг creating должен быть установлен во время запроса")
	}
	if _, err := s.Update(context.Background(), 1, itemForm{Name: "x"}); !errors.Is(err, ErrBusy) {
		t.Errorf("Update во время Create: err = %v, хотели ErrBusy", err)
	}
	if err := s.Delete(context.Background(), 1); !errors.Is(err, ErrBusy) {
		t.Errorf("Delete во время Create: err = %v, хотели ErrBusy", err)
	}
	// Загрузка не блокируется изменением.
	if err := s.FetchAll(context.Background(), nil); err != nil {
		t.Errorf("FetchAll во время Create: %v", err)
	}

	close(svc.block)
	if err := <-done; err != nil {
		t.Fatalf("Create: %v", err)
	}
	svc.block = nil

	if _, err := s.Update(context.Background(), 1, itemForm{Name: "x"}); err != nil {
		t.Errorf("после завершения Create Update должен пройти: %v", err)
	}
}

func TestResetStatus_Idempotent(t *testing.T) {
	s, _ := loadedStore(t, 2, 1, 2, 3)
	if _, err := s.Create(context.Background(), itemForm{}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	s.ResetStatus()
	first := s.Snapshot()
	s.ResetStatus()
	second := s.Snapshot()

	if first.Error != "" || first.Success != "" {
		t.Errorf("после ResetStatus: error=%q success=%q", first.Error, first.Success)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("повторный ResetStatus изменил состояние (-first +second):\n%s", diff)
	}
}

func TestMerge(t *testing.T) {
	s, _ := loadedStore(t, 10, 1, 2, 3)
	if _, err := s.FetchByID(context.Background(), 2); err != nil {
		t.Fatalf("FetchByID: %v", err)
	}

	s.Merge(item{ID: 2, Name: "recalculado"})
	s.Merge(item{ID: 8, Name: "nuevo"})

	snap := s.Snapshot()
	if diff := cmp.Diff([]uint{8, 1, 2, 3}, ids(snap.All)); diff != "" {
		t.Errorf("all (-want +got):\n%s", diff)
	}
	if snap.All[2].Name != "recalculado" {
		t.Errorf("запись 2 не заменена: %+v", snap.All[2])
	}
	if snap.Selected == nil || snap.Selected.Name != "recalculado" {
		t.Errorf("Selected не обновлён: %v", snap.Selected)
	}
	if snap.Success != "" {
		t.Errorf("Merge не должен менять Success: %q", snap.Success)
	}
}

func TestFind(t *testing.T) {
	s, _ := loadedStore(t, 10, 4, 5)

	if got, ok := s.Find(5); !ok || got.ID != 5 {
		t.Errorf("Find(5) = (%v, %v)", got, ok)
	}
	if _, ok := s.Find(6); ok {
		t.Error("Find(6) должен вернуть false")
	}
}
