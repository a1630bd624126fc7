package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func TestConfirm_PaymentHandleMismatchKeepsPending(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t)
	res, err := f.svc.Checkout(ctx, owner)
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, owner, res.OrderID, "pi_other", "succeeded")
	require.ErrorIs(t, err, domain.ErrPaymentHandleMismatch)
	require.Equal(t, domain.KindInvalid, domain.KindOf(err))

	order, err := f.svc.GetOrder(ctx, owner, res.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, order.Status)

	view, err := f.carts.Get(ctx, owner)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
}

func TestConfirm_EmptyHandleSkipsMismatchCheck(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t)
	res, err := f.svc.Checkout(ctx, owner)
	require.NoError(t, err)

	order, err := f.svc.Confirm(ctx, owner, res.OrderID, "", "succeeded")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPaid, order.Status)
}

func TestConfirm_NonSucceededOutcomeKeepsCart(t *testing.T) {
	for _, outcome := range []string{"pending", "failed", "requires_action"} {
		t.Run(outcome, func(t *testing.T) {
			f := newFixture(t, nil)
			ctx := context.Background()
			f.fillCart(t)
			res, err := f.svc.Checkout(ctx, owner)
			require.NoError(t, err)

			order, err := f.svc.Confirm(ctx, owner, res.OrderID, res.PaymentHandle, outcome)
			require.NoError(t, err)
			require.Equal(t, domain.OrderStatusPending, order.Status)

			view, err := f.carts.Get(ctx, owner)
			require.NoError(t, err)
			require.Len(t, view.Items, 2)
		})
	}
}

func TestConfirm_ForeignOrderNotFound(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t)
	res, err := f.svc.Checkout(ctx, owner)
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, owner+1, res.OrderID, res.PaymentHandle, "succeeded")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = f.svc.Confirm(ctx, owner, res.OrderID+1000, "", "succeeded")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestConfirm_TerminalOrderRejectsOtherOutcome(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t)
	res, err := f.svc.Checkout(ctx, owner)
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, owner, res.OrderID, res.PaymentHandle, "succeeded")
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, owner, res.OrderID, res.PaymentHandle, "failed")
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	require.Equal(t, domain.KindConflict, domain.KindOf(err))

	order, err := f.svc.GetOrder(ctx, owner, res.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPaid, order.Status)
}

func TestConfirm_OnlyOriginatingCartIsCleared(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t)
	_, err := f.carts.Upsert(ctx, owner+1, f.productA.ID, 1)
	require.NoError(t, err)

	res, err := f.svc.Checkout(ctx, owner)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, owner, res.OrderID, res.PaymentHandle, "succeeded")
	require.NoError(t, err)

	other, err := f.carts.Get(ctx, owner+1)
	require.NoError(t, err)
	require.Len(t, other.Items, 1)
}

func TestConfirm_RollsBackWhenCartClearFails(t *testing.T) {
	f := newFixture(t, func(store *memory.Store) domain.Transactor {
		return faultyTransactor{inner: store, failClear: true}
	})
	ctx := context.Background()
	f.fillCart(t)
	res, err := f.svc.Checkout(ctx, owner)
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, owner, res.OrderID, res.PaymentHandle, "succeeded")
	require.ErrorIs(t, err, errInjected)

	order, err := f.svc.GetOrder(ctx, owner, res.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, order.Status)

	view, err := f.carts.Get(ctx, owner)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
}

func TestConfirm_RollsBackWhenOutboxFails(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.fillCart(t)
	res, err := f.svc.Checkout(ctx, owner)
	require.NoError(t, err)

	f.svc.tx = faultyTransactor{inner: f.store, failEnqueue: true}
	_, err = f.svc.Confirm(ctx, owner, res.OrderID, res.PaymentHandle, "succeeded")
	require.ErrorIs(t, err, errInjected)

	order, err := f.svc.GetOrder(ctx, owner, res.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, order.Status)

	view, err := f.carts.Get(ctx, owner)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
}
