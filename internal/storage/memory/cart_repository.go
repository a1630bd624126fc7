package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type cartRepositoryInMemory struct {
	store *Store
	tx    *state
}

func (r *cartRepositoryInMemory) List(_ context.Context, ownerID int64) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	err := r.store.read(r.tx, func(st *state) error {
		for _, line := range st.cart {
			if line.OwnerID == ownerID {
				lines = append(lines, line)
			}
		}
		return nil
	})
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID > lines[j].ID })
	return lines, err
}

// Upsert заменяет количество, а не прибавляет его.
func (r *cartRepositoryInMemory) Upsert(_ context.Context, ownerID, productID int64, quantity int32) error {
	return r.store.write(r.tx, func(st *state) error {
		for id, line := range st.cart {
			if line.OwnerID == ownerID && line.ProductID == productID {
				line.Quantity = quantity
				st.cart[id] = line
				return nil
			}
		}
		id := st.nextID()
		st.cart[id] = domain.CartLine{
			ID:        id,
			OwnerID:   ownerID,
			ProductID: productID,
			Quantity:  quantity,
			CreatedAt: time.Now().UTC(),
		}
		return nil
	})
}

func (r *cartRepositoryInMemory) DeleteByProduct(_ context.Context, ownerID, productID int64) error {
	return r.store.write(r.tx, func(st *state) error {
		for id, line := range st.cart {
			if line.OwnerID == ownerID && line.ProductID == productID {
				delete(st.cart, id)
			}
		}
		return nil
	})
}

func (r *cartRepositoryInMemory) UpdateQuantity(_ context.Context, ownerID, lineID int64, quantity int32) error {
	return r.store.write(r.tx, func(st *state) error {
		line, ok := st.cart[lineID]
		if !ok || line.OwnerID != ownerID {
			return domain.ErrCartItemNotFound
		}
		line.Quantity = quantity
		st.cart[lineID] = line
		return nil
	})
}

func (r *cartRepositoryInMemory) Delete(_ context.Context, ownerID, lineID int64) error {
	return r.store.write(r.tx, func(st *state) error {
		line, ok := st.cart[lineID]
		if !ok || line.OwnerID != ownerID {
			return domain.ErrCartItemNotFound
		}
		delete(st.cart, lineID)
		return nil
	})
}

func (r *cartRepositoryInMemory) Clear(_ context.Context, ownerID int64) error {
	return r.store.write(r.tx, func(st *state) error {
		for id, line := range st.cart {
			if line.OwnerID == ownerID {
				delete(st.cart, id)
			}
		}
		return nil
	})
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
