package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// orderRepositoryInMemory: журнал заказов поверх общего состояния Store.
type orderRepositoryInMemory struct {
	store *Store
	tx    *state
}

// Create сохраняет заголовок вместе с позициями и присваивает идентификаторы.
func (r *orderRepositoryInMemory) Create(_ context.Context, order domain.Order) (int64, error) {
	var id int64
	err := r.store.write(r.tx, func(st *state) error {
		now := time.Now().UTC()
		id = st.nextID()

		order.ID = id
		if order.Status == "" {
			order.Status = domain.OrderStatusPending
		}
		order.CreatedAt = now
		order.UpdatedAt = now

		// Копируем позиции, чтобы вызывающий не мог изменить сохранённый снимок.
		lines := make([]domain.OrderLine, len(order.Lines))
		for i, line := range order.Lines {
			line.ID = st.nextID()
			line.OrderID = id
			line.CreatedAt = now
			line.Name = ""
			line.ImageURL = ""
			lines[i] = line
		}
		order.Lines = lines

		st.orders[id] = order
		return nil
	})
	return id, err
}

// GetForOwner возвращает заказ с позициями, дополненными названием и картинкой товара.
func (r *orderRepositoryInMemory) GetForOwner(_ context.Context, orderID, ownerID int64) (domain.Order, error) {
	var order domain.Order
	err := r.store.read(r.tx, func(st *state) error {
		stored, ok := st.orders[orderID]
		if !ok || stored.OwnerID != ownerID {
			return domain.ErrOrderNotFound
		}
		order = stored
		order.Lines = make([]domain.OrderLine, len(stored.Lines))
		for i, line := range stored.Lines {
			if p, ok := st.products[line.ProductID]; ok {
				line.Name = p.Name
				line.ImageURL = p.ImageURL
			}
			order.Lines[i] = line
		}
		return nil
	})
	return order, err
}

// ListByOwner возвращает заголовки без позиций, новые первыми.
func (r *orderRepositoryInMemory) ListByOwner(_ context.Context, ownerID int64) ([]domain.Order, error) {
	result := make([]domain.Order, 0)
	err := r.store.read(r.tx, func(st *state) error {
		for _, order := range st.orders {
			if order.OwnerID != ownerID {
				continue
			}
			order.Lines = nil
			result = append(result, order)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, err
}

// UpdateStatus меняет статус только при совпадении текущего с from.
func (r *orderRepositoryInMemory) UpdateStatus(_ context.Context, orderID int64, from, to domain.OrderStatus) error {
	return r.store.write(r.tx, func(st *state) error {
		order, ok := st.orders[orderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		if order.Status != from {
			return domain.ErrOrderStatusConflict
		}
		order.Status = to
		order.UpdatedAt = time.Now().UTC()
		st.orders[orderID] = order
		return nil
	})
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
