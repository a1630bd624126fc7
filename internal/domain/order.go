package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending: заказ создан на checkout, оплата ещё не подтверждена.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPaid: оплата подтверждена, корзина владельца очищена.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusFailed: оплата не состоялась.
	OrderStatusFailed OrderStatus = "failed"
)

// PaymentOutcomeSucceeded: единственный исход оплаты, переводящий заказ в paid.
const PaymentOutcomeSucceeded = "succeeded"

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal сообщает, что из статуса нет переходов.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed
}

// CanTransitionTo разрешает только pending → paid и pending → failed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s != OrderStatusPending {
		return false
	}
	return next == OrderStatusPaid || next == OrderStatusFailed
}

// TargetStatusForOutcome отображает заявленный клиентом исход оплаты в целевой статус.
// Всё, кроме "succeeded", оставляет заказ в pending, чтобы подтверждение можно было повторить.
func TargetStatusForOutcome(outcome string) OrderStatus {
	if outcome == PaymentOutcomeSucceeded {
		return OrderStatusPaid
	}
	return OrderStatusPending
}

// OrderLine: неизменяемый снимок позиции корзины на момент checkout.
type OrderLine struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int32
	// UnitPriceMinor: цена за единицу в минимальных денежных единицах, зафиксированная при checkout.
	UnitPriceMinor int64
	CreatedAt      time.Time

	// Name и ImageURL подтягиваются из каталога при чтении и в снимок не входят.
	Name     string
	ImageURL string
}

// Order: заголовок заказа и его позиции.
type Order struct {
	ID            int64
	OwnerID       int64
	Status        OrderStatus
	TotalMinor    int64
	Currency      string
	PaymentHandle string
	Lines         []OrderLine
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа перед записью и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.OwnerID <= 0 {
		errs = append(errs, ErrOwnerRequired)
	}
	if o.Currency == "" {
		errs = append(errs, ErrCurrencyRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем итог с позициями: qty * price.
	var calc int64
	for _, line := range o.Lines {
		if line.Quantity <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.UnitPriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
		calc += int64(line.Quantity) * line.UnitPriceMinor
	}
	if calc != o.TotalMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
