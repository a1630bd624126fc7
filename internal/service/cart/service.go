// Package cart управляет корзиной пользователя: upsert строк, правка по id строки, очистка.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/vladislavdragonenkov/storefront/internal/cache"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

const cacheOpTimeout = time.Second

// Service: операции над корзиной одного владельца.
type Service struct {
	repo    domain.CartRepository
	catalog domain.CatalogRepository
	cache   cache.CartCache
	metrics *metrics.OrderMetrics
	logger  *log.Entry

	// sfg схлопывает одновременные промахи кэша по одному владельцу и поколению.
	sfg singleflight.Group

	// generations растёт при каждой инвалидации; кэш заполняется только строками,
	// прочитанными в текущем поколении.
	genMu       sync.Mutex
	generations map[int64]uint64
}

// NewService создаёт сервис корзины. cartCache может быть nil.
func NewService(repo domain.CartRepository, catalog domain.CatalogRepository, cartCache cache.CartCache, m *metrics.OrderMetrics, logger *log.Entry) *Service {
	if cartCache == nil {
		cartCache = cache.Noop{}
	}
	if logger == nil {
		logger = log.WithField("component", "cart-service")
	}
	return &Service{
		repo:        repo,
		catalog:     catalog,
		cache:       cartCache,
		metrics:     m,
		logger:      logger,
		generations: make(map[int64]uint64),
	}
}

// Get возвращает корзину с актуальными ценами, новые строки первыми.
func (s *Service) Get(ctx context.Context, ownerID int64) (domain.Cart, error) {
	lines, err := s.loadLines(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, err
	}
	return s.enrich(ctx, ownerID, lines)
}

// Upsert выставляет количество товара в корзине: 0 и меньше удаляет строку, иначе вставляет или заменяет.
func (s *Service) Upsert(ctx context.Context, ownerID, productID int64, quantity int32) (domain.Cart, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := CheckStock(product, quantity); err != nil {
		return domain.Cart{}, err
	}

	if quantity <= 0 {
		err = s.repo.DeleteByProduct(ctx, ownerID, productID)
	} else {
		err = s.repo.Upsert(ctx, ownerID, productID, quantity)
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("upsert cart item: %w", err)
	}

	s.Invalidate(ctx, ownerID)
	return s.fresh(ctx, ownerID)
}

// UpdateByLineID меняет количество строки владельца без проверки остатка; 0 и меньше удаляет строку.
func (s *Service) UpdateByLineID(ctx context.Context, ownerID, lineID int64, quantity int32) (domain.Cart, error) {
	var err error
	if quantity <= 0 {
		err = s.repo.Delete(ctx, ownerID, lineID)
	} else {
		err = s.repo.UpdateQuantity(ctx, ownerID, lineID, quantity)
	}
	if err != nil {
		return domain.Cart{}, err
	}

	s.Invalidate(ctx, ownerID)
	return s.fresh(ctx, ownerID)
}

// RemoveByLineID удаляет строку владельца.
func (s *Service) RemoveByLineID(ctx context.Context, ownerID, lineID int64) (domain.Cart, error) {
	if err := s.repo.Delete(ctx, ownerID, lineID); err != nil {
		return domain.Cart{}, err
	}

	s.Invalidate(ctx, ownerID)
	return s.fresh(ctx, ownerID)
}

// Clear удаляет все строки владельца.
func (s *Service) Clear(ctx context.Context, ownerID int64) error {
	if err := s.repo.Clear(ctx, ownerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.Invalidate(ctx, ownerID)
	return nil
}

// Invalidate сбрасывает кэш корзины; ошибка кэша только логируется.
func (s *Service) Invalidate(ctx context.Context, ownerID int64) {
	s.bumpGeneration(ownerID)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheOpTimeout)
	defer cancel()

	if err := s.cache.Delete(ctx, ownerID); err != nil {
		s.logger.WithError(err).WithField("owner_id", ownerID).Warn("cart cache invalidate failed")
	}
}

// fresh читает корзину из хранилища в обход кэша: ответ мутации отражает её собственную запись.
func (s *Service) fresh(ctx context.Context, ownerID int64) (domain.Cart, error) {
	lines, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("list cart items: %w", err)
	}
	return s.enrich(ctx, ownerID, lines)
}

func (s *Service) generation(ownerID int64) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[ownerID]
}

func (s *Service) bumpGeneration(ownerID int64) {
	s.genMu.Lock()
	s.generations[ownerID]++
	s.genMu.Unlock()
}

func (s *Service) loadLines(ctx context.Context, ownerID int64) ([]domain.CartLine, error) {
	gen := s.generation(ownerID)
	key := strconv.FormatInt(ownerID, 10) + ":" + strconv.FormatUint(gen, 10)

	v, err, _ := s.sfg.Do(key, func() (any, error) {
		lines, err := s.cache.Get(ctx, ownerID)
		if err == nil {
			s.metrics.RecordCartCache("hit")
			return lines, nil
		}
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.RecordCartCache("miss")
		} else {
			s.metrics.RecordCartCache("error")
			s.logger.WithError(err).WithField("owner_id", ownerID).Warn("cart cache get failed")
		}

		lines, err = s.repo.List(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("list cart items: %w", err)
		}
		s.populate(ctx, ownerID, gen, lines)
		return lines, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.CartLine), nil
}

// populate кладёт строки в кэш, только если с момента чтения не было инвалидации.
// Инвалидация, пришедшая во время Set, замечается повторной проверкой и стирает запись.
func (s *Service) populate(ctx context.Context, ownerID int64, gen uint64, lines []domain.CartLine) {
	if s.generation(ownerID) != gen {
		return
	}

	setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheOpTimeout)
	defer cancel()
	if err := s.cache.Set(setCtx, ownerID, lines); err != nil {
		s.logger.WithError(err).WithField("owner_id", ownerID).Warn("cart cache set failed")
		return
	}

	if s.generation(ownerID) != gen {
		if err := s.cache.Delete(setCtx, ownerID); err != nil {
			s.logger.WithError(err).WithField("owner_id", ownerID).Warn("cart cache invalidate failed")
		}
	}
}

// enrich подтягивает живые данные товаров; строки без товара в каталоге пропускаются.
func (s *Service) enrich(ctx context.Context, ownerID int64, lines []domain.CartLine) (domain.Cart, error) {
	cart := domain.Cart{
		OwnerID:  ownerID,
		Items:    make([]domain.CartItem, 0, len(lines)),
		Currency: domain.DefaultCurrency,
	}
	if len(lines) == 0 {
		return cart, nil
	}

	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart products: %w", err)
	}

	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		if len(cart.Items) == 0 && product.Currency != "" {
			cart.Currency = product.Currency
		}
		cart.Items = append(cart.Items, domain.CartItem{
			LineID:     line.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			Name:       product.Name,
			PriceMinor: product.PriceMinor,
			Currency:   product.Currency,
			ImageURL:   product.ImageURL,
			Stock:      product.Stock,
		})
		cart.SubtotalMinor += product.PriceMinor * int64(line.Quantity)
	}

	return cart, nil
}
