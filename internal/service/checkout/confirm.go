package checkout

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// Confirm применяет заявленный клиентом исход оплаты к заказу владельца.
// Исход не сверяется с провайдером: подписи вебхуков нет, клиенту доверяем.
func (s *Service) Confirm(ctx context.Context, ownerID, orderID int64, paymentHandle, outcome string) (domain.Order, error) {
	order, err := s.orders.GetForOwner(ctx, orderID, ownerID)
	if err != nil {
		s.metrics.RecordConfirmation(confirmResultFor(err))
		return domain.Order{}, err
	}

	if paymentHandle != "" && order.PaymentHandle != "" && paymentHandle != order.PaymentHandle {
		s.metrics.RecordConfirmation(metrics.ConfirmResultMismatch)
		s.logger.WithFields(log.Fields{
			"owner_id": ownerID,
			"order_id": orderID,
		}).Warn("payment handle mismatch on confirm")
		return domain.Order{}, domain.ErrPaymentHandleMismatch
	}

	target := domain.TargetStatusForOutcome(outcome)
	if target == order.Status {
		s.metrics.RecordConfirmation(metrics.ConfirmResultNoop)
		return order, nil
	}
	if !order.Status.CanTransitionTo(target) {
		s.metrics.RecordConfirmation(metrics.ConfirmResultRejected)
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, order.Status, target)
	}

	from := order.Status
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		if err := tx.Orders().UpdateStatus(ctx, order.ID, from, target); err != nil {
			return err
		}
		if target != domain.OrderStatusPaid {
			return nil
		}
		if err := tx.Cart().Clear(ctx, ownerID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		order.Status = target
		return enqueueOrderEvent(ctx, tx, domain.EventOrderPaid, order)
	})
	if err != nil {
		s.metrics.RecordConfirmation(confirmResultFor(err))
		if domain.KindOf(err) == domain.KindInternal {
			s.logger.WithError(err).WithField("order_id", orderID).Error("confirm failed")
		}
		return domain.Order{}, err
	}

	if target == domain.OrderStatusPaid && s.invalidator != nil {
		s.invalidator.Invalidate(ctx, ownerID)
	}
	s.metrics.RecordConfirmation(string(target))
	s.logger.WithFields(log.Fields{
		"owner_id": ownerID,
		"order_id": orderID,
		"from":     from,
		"to":       target,
	}).Info("order status changed")

	return s.orders.GetForOwner(ctx, orderID, ownerID)
}

func confirmResultFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrOrderStatusConflict), errors.Is(err, domain.ErrInvalidStatusTransition):
		return metrics.ConfirmResultRejected
	case domain.KindOf(err) == domain.KindNotFound:
		return metrics.ConfirmResultRejected
	default:
		return metrics.ConfirmResultError
	}
}
