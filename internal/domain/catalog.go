package domain

import "time"

// Category: раздел каталога.
type Category struct {
	ID        int64
	Name      string
	Slug      string
	CreatedAt time.Time
}

// Product: товар каталога. Для ядра заказов только для чтения.
type Product struct {
	ID           int64
	CategoryID   int64
	CategoryName string
	CategorySlug string
	Name         string
	Description  string
	PriceMinor   int64
	Currency     string
	ImageURL     string
	Stock        int32
	CreatedAt    time.Time
}

// ProductSort задаёт порядок выдачи товаров.
type ProductSort string

const (
	ProductSortNewest    ProductSort = ""
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
)

const (
	DefaultProductPageSize = 20
	MaxProductPageSize     = 100
)

// ProductFilter: параметры поиска по каталогу.
type ProductFilter struct {
	Search     string
	CategoryID int64
	Sort       ProductSort
	Page       int
	PageSize   int
}

// Normalize приводит пагинацию к допустимым границам.
func (f ProductFilter) Normalize() ProductFilter {
	if f.PageSize <= 0 {
		f.PageSize = DefaultProductPageSize
	}
	if f.PageSize > MaxProductPageSize {
		f.PageSize = MaxProductPageSize
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return f
}

// Offset возвращает смещение для нормализованного фильтра.
func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// CatalogSeed: справочные данные для заполнения пустого хранилища.
// Товары ссылаются на категорию через CategorySlug.
type CatalogSeed struct {
	Categories []Category
	Products   []Product
	Locations  []StoreLocation
}
