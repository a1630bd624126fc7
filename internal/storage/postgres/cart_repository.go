package postgres

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type cartRepository struct {
	q querier
}

func (r *cartRepository) List(ctx context.Context, ownerID int64) ([]domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, user_id, product_id, quantity, created_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ID, &line.OwnerID, &line.ProductID, &line.Quantity, &line.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return lines, nil
}

// Upsert опирается на уникальный ключ (user_id, product_id): одна инструкция, без гонки update-then-insert.
func (r *cartRepository) Upsert(ctx context.Context, ownerID, productID int64, quantity int32) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.q.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, product_id) DO UPDATE
		SET quantity = EXCLUDED.quantity
	`, ownerID, productID, quantity); err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) DeleteByProduct(ctx context.Context, ownerID, productID int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.q.ExecContext(ctx, `
		DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2
	`, ownerID, productID); err != nil {
		return fmt.Errorf("delete cart item by product: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, ownerID, lineID int64, quantity int32) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `
		UPDATE cart_items SET quantity = $3 WHERE id = $1 AND user_id = $2
	`, lineID, ownerID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return requireAffected(res, domain.ErrCartItemNotFound)
}

func (r *cartRepository) Delete(ctx context.Context, ownerID, lineID int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `
		DELETE FROM cart_items WHERE id = $1 AND user_id = $2
	`, lineID, ownerID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return requireAffected(res, domain.ErrCartItemNotFound)
}

func (r *cartRepository) Clear(ctx context.Context, ownerID int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.q.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, ownerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
