// Package cache: кэш строк корзины для чтения GET /cart.
package cache

import (
	"context"
	"errors"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ErrCacheMiss: ключа нет в кэше.
var ErrCacheMiss = errors.New("cache miss")

// CartCache хранит строки корзины владельца. Цены в кэш не попадают: они всегда читаются из каталога.
type CartCache interface {
	Get(ctx context.Context, ownerID int64) ([]domain.CartLine, error)
	Set(ctx context.Context, ownerID int64, lines []domain.CartLine) error
	Delete(ctx context.Context, ownerID int64) error
}

// Noop: кэш, который ничего не хранит; используется без Redis.
type Noop struct{}

func (Noop) Get(context.Context, int64) ([]domain.CartLine, error) { return nil, ErrCacheMiss }

func (Noop) Set(context.Context, int64, []domain.CartLine) error { return nil }

func (Noop) Delete(context.Context, int64) error { return nil }

var _ CartCache = Noop{}
