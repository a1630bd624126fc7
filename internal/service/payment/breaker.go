package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CircuitState: состояние circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreaker перестаёт звать провайдера после серии ошибок подряд
// и пропускает одну пробную попытку по истечении resetTimeout.
type CircuitBreaker struct {
	mu           sync.Mutex
	maxFailures  int
	resetTimeout time.Duration
	failures     int
	lastFailure  time.Time
	state        CircuitState
	now          func() time.Time
	logger       *log.Entry
}

// NewCircuitBreaker создаёт breaker; maxFailures <= 0 заменяется на 1.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, logger *log.Entry) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 1
	}
	if logger == nil {
		logger = log.WithField("component", "circuit-breaker")
	}
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
		now:          time.Now,
		logger:       logger,
	}
}

// State возвращает текущее состояние.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// allow решает, можно ли выполнить вызов. В half-open пропускается ровно один вызов.
func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailure) < cb.resetTimeout {
			return false
		}
		cb.state = CircuitHalfOpen
		cb.logger.Info("circuit breaker half-open")
		return true
	case CircuitHalfOpen:
		return false
	default:
		return true
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		if cb.state != CircuitClosed {
			cb.logger.Info("circuit breaker closed")
		}
		cb.state = CircuitClosed
		cb.failures = 0
		return
	}

	cb.failures++
	cb.lastFailure = cb.now()
	if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
		if cb.state != CircuitOpen {
			cb.logger.WithField("failures", cb.failures).Warn("circuit breaker opened")
		}
		cb.state = CircuitOpen
	}
}

// abandon возвращает пробную попытку, прерванную не по вине провайдера.
func (cb *CircuitBreaker) abandon() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitHalfOpen {
		cb.state = CircuitOpen
	}
}

// Guarded: платёжный провайдер за circuit breaker: пока цепь разомкнута,
// checkout сразу получает ErrPaymentAuthorityUnavailable.
type Guarded struct {
	next    domain.PaymentAuthority
	breaker *CircuitBreaker
}

// NewGuarded оборачивает провайдера.
func NewGuarded(next domain.PaymentAuthority, breaker *CircuitBreaker) *Guarded {
	return &Guarded{next: next, breaker: breaker}
}

// CreatePaymentIntent вызывает провайдера, если цепь замкнута или пробная попытка разрешена.
func (g *Guarded) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (domain.PaymentIntent, error) {
	if !g.breaker.allow() {
		return domain.PaymentIntent{}, fmt.Errorf("%w: circuit breaker is open", domain.ErrPaymentAuthorityUnavailable)
	}

	intent, err := g.next.CreatePaymentIntent(ctx, amountMinor, currency, metadata)
	// Отмена запроса клиентом не говорит о здоровье провайдера.
	if err != nil && ctx.Err() != nil {
		g.breaker.abandon()
		return domain.PaymentIntent{}, err
	}
	if providerFault(err) {
		g.breaker.record(err)
	} else {
		g.breaker.record(nil)
	}
	return intent, err
}

// providerFault сообщает, говорит ли ошибка о неисправности провайдера.
// Ответ 4xx на сам запрос (например, amount_too_small) означает, что провайдер жив;
// исключения: 401 (ключ отозван) и 429 (лимит запросов).
func providerFault(err error) bool {
	if err == nil {
		return false
	}
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return true
	}
	code := stripeErr.HTTPStatusCode
	switch {
	case code == http.StatusUnauthorized, code == http.StatusTooManyRequests:
		return true
	case code >= 400 && code < 500:
		return false
	default:
		return true
	}
}

var _ domain.PaymentAuthority = (*Guarded)(nil)
