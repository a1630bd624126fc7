package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type catalogRepositoryInMemory struct {
	store *Store
}

func (r *catalogRepositoryInMemory) GetProduct(_ context.Context, id int64) (domain.Product, error) {
	var product domain.Product
	err := r.store.read(nil, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		product = withCategory(st, p)
		return nil
	})
	return product, err
}

func (r *catalogRepositoryInMemory) GetProducts(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	result := make(map[int64]domain.Product, len(ids))
	err := r.store.read(nil, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				result[id] = withCategory(st, p)
			}
		}
		return nil
	})
	return result, err
}

func (r *catalogRepositoryInMemory) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter = filter.Normalize()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var matched []domain.Product
	err := r.store.read(nil, func(st *state) error {
		for _, p := range st.products {
			if filter.CategoryID > 0 && p.CategoryID != filter.CategoryID {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.Description), search) {
				continue
			}
			matched = append(matched, withCategory(st, p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch filter.Sort {
		case domain.ProductSortPriceAsc:
			if a.PriceMinor != b.PriceMinor {
				return a.PriceMinor < b.PriceMinor
			}
		case domain.ProductSortPriceDesc:
			if a.PriceMinor != b.PriceMinor {
				return a.PriceMinor > b.PriceMinor
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID > b.ID
	})

	offset := filter.Offset()
	if offset >= len(matched) {
		return []domain.Product{}, nil
	}
	end := offset + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *catalogRepositoryInMemory) ListCategories(_ context.Context) ([]domain.Category, error) {
	var result []domain.Category
	err := r.store.read(nil, func(st *state) error {
		result = make([]domain.Category, 0, len(st.categories))
		for _, c := range st.categories {
			result = append(result, c)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, err
}

func withCategory(st *state, p domain.Product) domain.Product {
	if c, ok := st.categories[p.CategoryID]; ok {
		p.CategoryName = c.Name
		p.CategorySlug = c.Slug
	}
	return p
}

// AddCategory добавляет категорию и возвращает её с присвоенным id.
func (s *Store) AddCategory(c domain.Category) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.state.nextID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.state.categories[c.ID] = c
	return c
}

// AddProduct добавляет товар; пустая валюта заменяется на usd.
func (s *Store) AddProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.state.nextID()
	if p.Currency == "" {
		p.Currency = domain.DefaultCurrency
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.state.products[p.ID] = p
	return p
}

// UpdateProduct перезаписывает товар каталога (цена, остаток); ядро заказов этим не пользуется.
func (s *Store) UpdateProduct(p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	s.state.products[p.ID] = p
	return nil
}

// AddLocation добавляет магазин.
func (s *Store) AddLocation(l domain.StoreLocation) domain.StoreLocation {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.ID = s.state.nextID()
	s.state.locations[l.ID] = l
	return l
}

// SeedCatalog заполняет каталог, если он пуст; повторный вызов ничего не меняет.
func (s *Store) SeedCatalog(_ context.Context, data domain.CatalogSeed) error {
	s.mu.RLock()
	empty := len(s.state.products) == 0 && len(s.state.categories) == 0
	s.mu.RUnlock()
	if !empty {
		return nil
	}

	bySlug := make(map[string]int64, len(data.Categories))
	for _, c := range data.Categories {
		bySlug[c.Slug] = s.AddCategory(c).ID
	}
	for _, p := range data.Products {
		p.CategoryID = bySlug[p.CategorySlug]
		s.AddProduct(p)
	}
	for _, l := range data.Locations {
		s.AddLocation(l)
	}
	return nil
}

var _ domain.CatalogRepository = (*catalogRepositoryInMemory)(nil)
