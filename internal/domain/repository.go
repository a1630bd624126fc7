package domain

import (
	"context"
	"time"
)

// CartRepository хранит строки корзин. Все методы ограничены одним владельцем.
type CartRepository interface {
	// List возвращает строки корзины, новые первыми (по убыванию id).
	List(ctx context.Context, ownerID int64) ([]CartLine, error)
	// Upsert вставляет строку или заменяет количество у существующей (owner, product).
	Upsert(ctx context.Context, ownerID, productID int64, quantity int32) error
	// DeleteByProduct удаляет строку (owner, product); отсутствие строки не ошибка.
	DeleteByProduct(ctx context.Context, ownerID, productID int64) error
	// UpdateQuantity меняет количество строки владельца или возвращает ErrCartItemNotFound.
	UpdateQuantity(ctx context.Context, ownerID, lineID int64, quantity int32) error
	// Delete удаляет строку владельца или возвращает ErrCartItemNotFound.
	Delete(ctx context.Context, ownerID, lineID int64) error
	// Clear удаляет все строки владельца.
	Clear(ctx context.Context, ownerID int64) error
}

// CatalogRepository отдаёт товары и категории. Только чтение.
type CatalogRepository interface {
	// GetProduct возвращает товар или ErrProductNotFound.
	GetProduct(ctx context.Context, id int64) (Product, error)
	// GetProducts возвращает найденные товары по id; отсутствующие просто пропускаются.
	GetProducts(ctx context.Context, ids []int64) (map[int64]Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// OrderRepository: журнал заказов: только создание и смена статуса.
type OrderRepository interface {
	// Create сохраняет заголовок и позиции атомарно и возвращает присвоенный id.
	Create(ctx context.Context, order Order) (int64, error)
	// GetForOwner возвращает заказ с позициями или ErrOrderNotFound, если его нет у владельца.
	GetForOwner(ctx context.Context, orderID, ownerID int64) (Order, error)
	// ListByOwner возвращает заголовки заказов владельца, новые первыми.
	ListByOwner(ctx context.Context, ownerID int64) ([]Order, error)
	// UpdateStatus меняет статус, только если текущий равен from; иначе ErrOrderStatusConflict.
	UpdateStatus(ctx context.Context, orderID int64, from, to OrderStatus) error
}

// UserRepository хранит пользователей.
type UserRepository interface {
	// Create сохраняет пользователя; дубликат email, ErrEmailTaken.
	Create(ctx context.Context, user User) (User, error)
	// GetByEmail ищет без учёта регистра или возвращает ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
}

// LocationRepository хранит офлайн-магазины.
type LocationRepository interface {
	List(ctx context.Context) ([]StoreLocation, error)
	// FindNearby возвращает магазины в радиусе radiusKm, ближайшие первыми, не более limit.
	FindNearby(ctx context.Context, origin Coordinates, radiusKm float64, limit int) ([]StoreLocation, error)
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(ctx context.Context, key string) (IdempotencyRecord, error)
	MarkDone(ctx context.Context, key string, responseBody []byte, httpStatus int) error
	MarkFailed(ctx context.Context, key string, responseBody []byte, httpStatus int) error
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error)
}

// Tx: репозитории, привязанные к одной транзакции.
type Tx interface {
	Orders() OrderRepository
	Cart() CartRepository
	Outbox() OutboxRepository
}

// Transactor выполняет fn в транзакции: ошибка fn откатывает все записи, nil, фиксирует.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
