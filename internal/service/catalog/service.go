// Package catalog отдаёт категории и товары только на чтение.
package catalog

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Service: чтение каталога.
type Service struct {
	repo domain.CatalogRepository
}

// NewService создаёт сервис каталога.
func NewService(repo domain.CatalogRepository) *Service {
	return &Service{repo: repo}
}

// ListCategories возвращает категории по имени.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListProducts применяет фильтр с нормализованной пагинацией.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct возвращает товар или ErrProductNotFound.
func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}
