package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type orderRepository struct {
	q querier
}

// Create пишет заголовок и позиции. Вне WithinTx атомарность обеспечивается собственной транзакцией.
func (r *orderRepository) Create(ctx context.Context, order domain.Order) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if db, ok := r.q.(*sql.DB); ok {
		var id int64
		err := (&Store{db: db}).WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
			var err error
			id, err = tx.Orders().Create(ctx, order)
			return err
		})
		return id, err
	}

	status := order.Status
	if status == "" {
		status = domain.OrderStatusPending
	}

	var id int64
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, status, total_minor, currency, payment_handle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`, order.OwnerID, string(status), order.TotalMinor, order.Currency, order.PaymentHandle).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price_minor, created_at)
			VALUES ($1, $2, $3, $4, NOW())
		`, id, line.ProductID, line.Quantity, line.UnitPriceMinor); err != nil {
			return 0, fmt.Errorf("insert order item: %w", err)
		}
	}

	return id, nil
}

func (r *orderRepository) GetForOwner(ctx context.Context, orderID, ownerID int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order, err := scanOrder(r.q.QueryRowContext(ctx, `
		SELECT id, user_id, status, total_minor, currency, payment_handle, created_at, updated_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`, orderID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines

	return order, nil
}

func (r *orderRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, user_id, status, total_minor, currency, payment_handle, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

// UpdateStatus: условное обновление: 0 затронутых строк значит, что статус уже изменён или заказа нет.
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, from, to domain.OrderStatus) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `
		UPDATE orders
		SET status = $3,
		    updated_at = NOW()
		WHERE id = $1
		  AND status = $2
	`, orderID, string(from), string(to))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return fmt.Errorf("check order exists: %w", err)
	}
	if !exists {
		return domain.ErrOrderNotFound
	}
	return domain.ErrOrderStatusConflict
}

func (r *orderRepository) loadLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price_minor, oi.created_at,
		       COALESCE(p.name, ''), COALESCE(p.image_url, '')
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.UnitPriceMinor, &line.CreatedAt,
			&line.Name, &line.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return lines, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order  domain.Order
		status string
	)
	if err := row.Scan(
		&order.ID, &order.OwnerID, &status, &order.TotalMinor, &order.Currency,
		&order.PaymentHandle, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
