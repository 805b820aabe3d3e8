package store

// Paginate пересчитывает видимую страницу для запроса req.
// visible = all[(p-1)*s : p*s], за концом коллекции страница пустая.
// CurrentPage < 1 приводится к 1, PageSize < 1 → ErrInvalidPageSize.
func (s *Store[T, C, U]) Paginate(req PageRequest) error {
	if req.PageSize < 1 {
		return ErrInvalidPageSize
	}
	if req.CurrentPage < 1 {
		req.CurrentPage = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.page.CurrentPage = req.CurrentPage
	s.page.PageSize = req.PageSize
	s.recomputeLocked(false)
	return nil
}

// NextPage переходит на следующую страницу, не дальше последней.
func (s *Store[T, C, U]) NextPage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.page.CurrentPage
	if next < s.page.LastPage {
		next++
	}
	s.page.CurrentPage = clampPage(next, s.page.LastPage)
	s.recomputeLocked(false)
}

// PrevPage переходит на предыдущую страницу, не раньше первой.
func (s *Store[T, C, U]) PrevPage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.page.CurrentPage = clampPage(s.page.CurrentPage-1, s.page.LastPage)
	s.recomputeLocked(false)
}

// recomputeLocked пересчитывает visible и PageState из all.
// clamp — вернуть текущую страницу в [1, lastPage], если коллекция сократилась.
// Вызывается под s.mu.
func (s *Store[T, C, U]) recomputeLocked(clamp bool) {
	total := len(s.all)
	s.page.TotalCount = total
	s.page.LastPage = lastPage(total, s.page.PageSize)
	if clamp {
		s.page.CurrentPage = clampPage(s.page.CurrentPage, s.page.LastPage)
	}
	s.visible = window(s.all, s.page.CurrentPage, s.page.PageSize)
}

// lastPage — число страниц, не меньше 1 (пустая коллекция показывается как страница 1).
// Деление без сложения: pageSize может быть сколь угодно большим.
func lastPage(total, pageSize int) int {
	if pageSize < 1 || total == 0 {
		return 1
	}
	return (total-1)/pageSize + 1
}

// clampPage приводит номер страницы к диапазону [1, last].
func clampPage(page, last int) int {
	if page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return page
}

// window возвращает копию среза items для страницы page размером size.
// Номер страницы сравнивается с числом страниц до умножения, поэтому
// (page-1)*size не переполняется.
func window[T any](items []T, page, size int) []T {
	if len(items) == 0 || size < 1 || page < 1 || page-1 > (len(items)-1)/size {
		return []T{}
	}
	start := (page - 1) * size
	end := start + min(size, len(items)-start)
	return append([]T{}, items[start:end]...)
}
