// Package payment содержит реализации платёжного провайдера.
package payment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultStripeTimeout = 10 * time.Second

// intentCreator: часть клиента Stripe, которой пользуется Stripe.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// Stripe создаёт PaymentIntent через Stripe API.
type Stripe struct {
	intents intentCreator
}

// NewStripe создаёт провайдер с секретным ключом; timeout <= 0 заменяется значением по умолчанию.
func NewStripe(secretKey string, timeout time.Duration) *Stripe {
	if timeout <= 0 {
		timeout = defaultStripeTimeout
	}
	sc := &client.API{}
	sc.Init(secretKey, stripe.NewBackends(&http.Client{Timeout: timeout}))
	return &Stripe{intents: sc.PaymentIntents}
}

// CreatePaymentIntent создаёт intent с автоматическими методами оплаты.
func (s *Stripe) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.intents.New(params)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("%w: stripe: %w", domain.ErrPaymentAuthorityUnavailable, err)
	}
	return domain.PaymentIntent{Handle: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

var _ domain.PaymentAuthority = (*Stripe)(nil)
