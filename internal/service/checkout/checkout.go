// Package checkout превращает корзину в заказ и подтверждает оплату.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/pricing"
)

// CartInvalidator сбрасывает кэшированное представление корзины после коммита.
type CartInvalidator interface {
	Invalidate(ctx context.Context, ownerID int64)
}

// Result: ответ checkout для клиентского платёжного flow.
type Result struct {
	OrderID       int64
	PaymentHandle string
	ClientSecret  string
	AmountMinor   int64
	Currency      string
}

// Deps: зависимости сервиса.
type Deps struct {
	Carts       domain.CartRepository
	Orders      domain.OrderRepository
	Catalog     domain.CatalogRepository
	Payments    domain.PaymentAuthority
	Transactor  domain.Transactor
	Invalidator CartInvalidator
	Metrics     *metrics.OrderMetrics
	Logger      *log.Entry
}

// Service: checkout и подтверждение оплаты.
type Service struct {
	carts       domain.CartRepository
	orders      domain.OrderRepository
	pricer      *pricing.Pricer
	payments    domain.PaymentAuthority
	tx          domain.Transactor
	invalidator CartInvalidator
	metrics     *metrics.OrderMetrics
	logger      *log.Entry
}

// NewService собирает сервис из зависимостей.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	return &Service{
		carts:       deps.Carts,
		orders:      deps.Orders,
		pricer:      pricing.NewPricer(deps.Catalog),
		payments:    deps.Payments,
		tx:          deps.Transactor,
		invalidator: deps.Invalidator,
		metrics:     deps.Metrics,
		logger:      logger,
	}
}

// Checkout фиксирует цены корзины, получает payment intent и сохраняет заказ в pending.
// Корзина не очищается: это делает только успешное подтверждение.
func (s *Service) Checkout(ctx context.Context, ownerID int64) (Result, error) {
	started := time.Now()

	res, err := s.checkout(ctx, ownerID)
	if err != nil {
		s.metrics.RecordCheckoutFailure(domain.KindOf(err).String())
		entry := s.logger.WithError(err).WithField("owner_id", ownerID)
		if domain.KindOf(err) == domain.KindInternal || domain.KindOf(err) == domain.KindUnavailable {
			entry.Error("checkout failed")
		} else {
			entry.Debug("checkout rejected")
		}
		return Result{}, err
	}

	s.metrics.RecordCheckout(res.Currency, res.AmountMinor, time.Since(started))
	s.logger.WithFields(log.Fields{
		"owner_id": ownerID,
		"order_id": res.OrderID,
		"amount":   res.AmountMinor,
		"currency": res.Currency,
	}).Info("order created")
	return res, nil
}

func (s *Service) checkout(ctx context.Context, ownerID int64) (Result, error) {
	lines, err := s.carts.List(ctx, ownerID)
	if err != nil {
		return Result{}, fmt.Errorf("read cart: %w", err)
	}
	if len(lines) == 0 {
		return Result{}, domain.ErrEmptyCart
	}

	snap, err := s.pricer.Snapshot(ctx, lines)
	if err != nil {
		return Result{}, err
	}

	intent, err := s.payments.CreatePaymentIntent(ctx, snap.TotalMinor, snap.Currency, map[string]string{
		"user_id": strconv.FormatInt(ownerID, 10),
	})
	if err != nil {
		if !errors.Is(err, domain.ErrPaymentAuthorityUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrPaymentAuthorityUnavailable, err)
		}
		return Result{}, err
	}

	order := domain.Order{
		OwnerID:       ownerID,
		Status:        domain.OrderStatusPending,
		TotalMinor:    snap.TotalMinor,
		Currency:      snap.Currency,
		PaymentHandle: intent.Handle,
		Lines:         snap.OrderLines(),
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return Result{}, fmt.Errorf("order invariants: %w", errors.Join(errs...))
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		id, err := tx.Orders().Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.ID = id
		return enqueueOrderEvent(ctx, tx, domain.EventOrderCreated, order)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		OrderID:       order.ID,
		PaymentHandle: intent.Handle,
		ClientSecret:  intent.ClientSecret,
		AmountMinor:   snap.TotalMinor,
		Currency:      snap.Currency,
	}, nil
}

// ListOrders возвращает заголовки заказов владельца, новые первыми.
func (s *Service) ListOrders(ctx context.Context, ownerID int64) ([]domain.Order, error) {
	orders, err := s.orders.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder возвращает заказ владельца с позициями.
func (s *Service) GetOrder(ctx context.Context, ownerID, orderID int64) (domain.Order, error) {
	return s.orders.GetForOwner(ctx, orderID, ownerID)
}

type orderEvent struct {
	OrderID       int64              `json:"order_id"`
	OwnerID       int64              `json:"owner_id"`
	Status        domain.OrderStatus `json:"status"`
	TotalMinor    int64              `json:"total_minor"`
	Currency      string             `json:"currency"`
	PaymentHandle string             `json:"payment_handle,omitempty"`
	Lines         []orderEventLine   `json:"lines,omitempty"`
	OccurredAt    string             `json:"occurred_at"`
}

type orderEventLine struct {
	ProductID      int64 `json:"product_id"`
	Quantity       int32 `json:"quantity"`
	UnitPriceMinor int64 `json:"unit_price_minor"`
}

// enqueueOrderEvent пишет событие в outbox той же транзакции, что и изменение заказа.
func enqueueOrderEvent(ctx context.Context, tx domain.Tx, eventType string, order domain.Order) error {
	event := orderEvent{
		OrderID:       order.ID,
		OwnerID:       order.OwnerID,
		Status:        order.Status,
		TotalMinor:    order.TotalMinor,
		Currency:      order.Currency,
		PaymentHandle: order.PaymentHandle,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	for _, line := range order.Lines {
		event.Lines = append(event.Lines, orderEventLine{
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPriceMinor: line.UnitPriceMinor,
		})
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	_, err = tx.Outbox().Enqueue(ctx, domain.OutboxMessage{
		AggregateType: domain.AggregateOrder,
		AggregateID:   strconv.FormatInt(order.ID, 10),
		EventType:     eventType,
		Payload:       data,
	})
	if err != nil {
		return fmt.Errorf("enqueue %s event: %w", eventType, err)
	}
	return nil
}
