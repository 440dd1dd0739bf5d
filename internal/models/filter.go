package models

// Значения по умолчанию для отсутствующих параметров списка товаров.
const (
	DefaultSortBy  = "id"
	DefaultSortDir = "asc"
	DefaultPerPage = 15
	DefaultPage    = 1
)

// ProductFilter представляет разобранные параметры запроса списка товаров.
// Конструируется на каждый запрос и никуда не сохраняется.
// MinPrice/MaxPrice — указатели: nil означает, что граница не задана.
type ProductFilter struct {
	Search   string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
	SortDir  string
	PerPage  int
	Page     int
}

// NewProductFilter возвращает фильтр со значениями по умолчанию
// (id/asc/15/1 — как в исходном API).
func NewProductFilter() ProductFilter {
	return ProductFilter{
		SortBy:  DefaultSortBy,
		SortDir: DefaultSortDir,
		PerPage: DefaultPerPage,
		Page:    DefaultPage,
	}
}

// Offset возвращает смещение для LIMIT/OFFSET пагинации.
func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}
