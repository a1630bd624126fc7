package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Mock выдаёт фиктивные intent'ы для локального запуска без Stripe.
type Mock struct {
	mu    sync.Mutex
	Err   error
	Calls int
}

// NewMock возвращает mock с успешным сценарием по умолчанию.
func NewMock() *Mock {
	return &Mock{}
}

// CreatePaymentIntent возвращает handle вида pi_mock_<uuid> или настроенную ошибку.
func (m *Mock) CreatePaymentIntent(_ context.Context, _ int64, _ string, _ map[string]string) (domain.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	if m.Err != nil {
		return domain.PaymentIntent{}, m.Err
	}
	handle := "pi_mock_" + uuid.NewString()
	return domain.PaymentIntent{Handle: handle, ClientSecret: handle + "_secret_mock"}, nil
}

// Unconfigured: провайдер без ключа: любая попытка оплаты отклоняется.
type Unconfigured struct{}

// CreatePaymentIntent всегда возвращает ErrPaymentAuthorityUnavailable.
func (Unconfigured) CreatePaymentIntent(context.Context, int64, string, map[string]string) (domain.PaymentIntent, error) {
	return domain.PaymentIntent{}, fmt.Errorf("%w: stripe secret key is not configured", domain.ErrPaymentAuthorityUnavailable)
}

var (
	_ domain.PaymentAuthority = (*Mock)(nil)
	_ domain.PaymentAuthority = Unconfigured{}
)
