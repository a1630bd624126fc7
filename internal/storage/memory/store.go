// Package memory: in-memory хранилище для локальной разработки и тестов.
package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// state: все таблицы хранилища. Транзакция работает с копией state и подменяет оригинал при успехе.
type state struct {
	seq int64

	users      map[int64]domain.User
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	cart       map[int64]domain.CartLine
	orders     map[int64]domain.Order
	outbox     map[string]outboxRecord
	locations  map[int64]domain.StoreLocation
}

func newState() *state {
	return &state{
		users:      make(map[int64]domain.User),
		categories: make(map[int64]domain.Category),
		products:   make(map[int64]domain.Product),
		cart:       make(map[int64]domain.CartLine),
		orders:     make(map[int64]domain.Order),
		outbox:     make(map[string]outboxRecord),
		locations:  make(map[int64]domain.StoreLocation),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// clone копирует изменяемые в транзакциях таблицы. Справочники только для чтения разделяются.
func (s *state) clone() *state {
	dst := *s
	dst.cart = make(map[int64]domain.CartLine, len(s.cart))
	for id, line := range s.cart {
		dst.cart[id] = line
	}
	dst.orders = make(map[int64]domain.Order, len(s.orders))
	for id, order := range s.orders {
		dst.orders[id] = order
	}
	dst.outbox = make(map[string]outboxRecord, len(s.outbox))
	for id, rec := range s.outbox {
		dst.outbox[id] = rec
	}
	return &dst
}

// Store объединяет in-memory репозитории над общим состоянием.
type Store struct {
	mu    sync.RWMutex
	state *state

	idempotency *idempotencyRepositoryInMemory
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		state:       newState(),
		idempotency: newIdempotencyRepository(),
	}
}

// Cart возвращает репозиторий корзин.
func (s *Store) Cart() domain.CartRepository { return &cartRepositoryInMemory{store: s} }

// Catalog возвращает каталог товаров.
func (s *Store) Catalog() domain.CatalogRepository { return &catalogRepositoryInMemory{store: s} }

// Orders возвращает журнал заказов.
func (s *Store) Orders() domain.OrderRepository { return &orderRepositoryInMemory{store: s} }

// Users возвращает репозиторий пользователей.
func (s *Store) Users() domain.UserRepository { return &userRepositoryInMemory{store: s} }

// Locations возвращает репозиторий магазинов.
func (s *Store) Locations() domain.LocationRepository { return &locationRepositoryInMemory{store: s} }

// Outbox возвращает outbox-репозиторий.
func (s *Store) Outbox() domain.OutboxRepository { return &outboxRepositoryInMemory{store: s} }

// Idempotency возвращает репозиторий idempotency-ключей.
func (s *Store) Idempotency() domain.IdempotencyRepository { return s.idempotency }

// WithinTx выполняет fn над копией состояния под эксклюзивной блокировкой.
// Внутри fn нельзя обращаться к репозиториям Store напрямую, только через tx.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(ctx, &txView{store: s, st: working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

// read выполняет fn над состоянием транзакции или под read-lock над общим состоянием.
func (s *Store) read(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (s *Store) write(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

type txView struct {
	store *Store
	st    *state
}

func (t *txView) Orders() domain.OrderRepository {
	return &orderRepositoryInMemory{store: t.store, tx: t.st}
}

func (t *txView) Cart() domain.CartRepository {
	return &cartRepositoryInMemory{store: t.store, tx: t.st}
}

func (t *txView) Outbox() domain.OutboxRepository {
	return &outboxRepositoryInMemory{store: t.store, tx: t.st}
}

var _ domain.Transactor = (*Store)(nil)
