package calendar

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`     // номер страницы (с 1)
	PerPage  int  `json:"per_page"` // количество элементов на странице
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
	Total    int  `json:"total"`     // общее количество элементов
	LastPage int  `json:"last_page"` // номер последней страницы, минимум 1
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 200
)

// NormalizePaging приводит page/perPage к допустимым значениям.
func NormalizePaging(page, perPage int) (int, int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = 1
	}
	return page, perPage
}

// Paginate возвращает срез items для указанной страницы и метаданные.
// page нумеруется с 1. При некорректных значениях используются дефолты.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	page, perPage = NormalizePaging(page, perPage)

	total := len(items)

	start := (page - 1) * perPage
	if start > total {
		start = total
	}

	end := start + perPage
	if end > total {
		end = total
	}

	last := (total + perPage - 1) / perPage
	if last == 0 {
		last = 1
	}

	return Page[T]{
		Items:    items[start:end],
		Page:     page,
		PerPage:  perPage,
		HasNext:  end < total,
		HasPrev:  page > 1,
		Total:    total,
		LastPage: last,
	}
}
