package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибка отсутствующего владельца заказа.
	ErrOwnerRequired = errors.New("owner_id is required")
	// Ошибка отсутствующего кода валюты.
	ErrCurrencyRequired = errors.New("currency is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("total must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrLineQtyInvalid = errors.New("line quantity must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrLinePriceInvalid = errors.New("line unit price must be non-negative")
	// Ошибка несоответствия итога заказа и суммы позиций.
	ErrAmountMismatch = errors.New("order total does not match lines sum")

	// ErrEmptyCart: checkout пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInsufficientStock: запрошено больше, чем есть на складе.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrProductNotFound: товара нет в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrCartItemNotFound: позиция корзины не найдена у этого пользователя.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrOrderNotFound возвращается, если заказа нет или он принадлежит другому пользователю.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPaymentHandleMismatch: подтверждение пришло с чужим payment intent.
	ErrPaymentHandleMismatch = errors.New("payment mismatch")
	// ErrInvalidStatusTransition: переход статуса запрещён машиной состояний.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	// ErrOrderStatusConflict: статус заказа изменился параллельным запросом.
	ErrOrderStatusConflict = errors.New("order status changed concurrently")
	// ErrPaymentAuthorityUnavailable: платёжный провайдер не настроен или недоступен.
	ErrPaymentAuthorityUnavailable = errors.New("payment authority unavailable")

	// ErrUserNotFound возвращается, если пользователя нет.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken: email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials: неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated: нет или невалидный токен доступа.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrGeocoderUnavailable: геокодер не настроен или вернул ошибку.
	ErrGeocoderUnavailable = errors.New("geocoder unavailable")
	// ErrLocationNotFound: адрес не удалось геокодировать.
	ErrLocationNotFound = errors.New("location not found")

	// ErrOutboxPublish: ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// Kind классифицирует ошибку для транспортного слоя.
type Kind int

const (
	// KindInternal: ошибка хранилища или неожиданная ошибка; клиенту отдаётся общий текст.
	KindInternal Kind = iota
	// KindInvalid: ошибка, которую пользователь может исправить сам.
	KindInvalid
	// KindNotFound: запрошенной сущности нет.
	KindNotFound
	// KindConflict: запрос противоречит текущему состоянию.
	KindConflict
	// KindUnauthenticated: не удалось установить личность.
	KindUnauthenticated
	// KindUnavailable: внешний провайдер не настроен или недоступен.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

var kindBySentinel = []struct {
	err  error
	kind Kind
}{
	{ErrEmptyCart, KindInvalid},
	{ErrInsufficientStock, KindInvalid},
	{ErrPaymentHandleMismatch, KindInvalid},
	{ErrIdempotencyKeyRequired, KindInvalid},
	{ErrProductNotFound, KindNotFound},
	{ErrCartItemNotFound, KindNotFound},
	{ErrOrderNotFound, KindNotFound},
	{ErrUserNotFound, KindNotFound},
	{ErrLocationNotFound, KindNotFound},
	{ErrInvalidStatusTransition, KindConflict},
	{ErrOrderStatusConflict, KindConflict},
	{ErrEmailTaken, KindConflict},
	{ErrIdempotencyHashMismatch, KindConflict},
	{ErrIdempotencyInProgress, KindConflict},
	{ErrInvalidCredentials, KindUnauthenticated},
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrPaymentAuthorityUnavailable, KindUnavailable},
	{ErrGeocoderUnavailable, KindUnavailable},
}

// KindOf возвращает класс ошибки; всё неизвестное считается внутренней ошибкой.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindInvalid
	}
	for _, entry := range kindBySentinel {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}
	return KindInternal
}

// SentinelOf возвращает классифицированную sentinel-ошибку из цепочки err или nil.
func SentinelOf(err error) error {
	for _, entry := range kindBySentinel {
		if errors.Is(err, entry.err) {
			return entry.err
		}
	}
	return nil
}

// FieldError описывает ошибку валидации одного поля запроса.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError собирает ошибки валидации входных данных.
type ValidationError struct {
	Fields []FieldError
}

// Add добавляет замечание по полю.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil возвращает nil, если замечаний нет.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
