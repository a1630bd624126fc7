package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
)

const (
	idempotencyKeyHeader    = "Idempotency-Key"
	idempotentReplayHeader  = "Idempotent-Replayed"
	maxIdempotencyKeyLength = 255
)

var confirmOutcomes = map[string]struct{}{
	"succeeded": {},
	"pending":   {},
	"failed":    {},
}

type confirmRequest struct {
	OrderID         int64  `json:"order_id"`
	Status          string `json:"status"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// checkoutOrder создаёт заказ из корзины. С заголовком Idempotency-Key повтор того же запроса
// возвращает сохранённый ответ без повторного обращения к платёжному провайдеру.
func (a *API) checkoutOrder(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFrom(r.Context())
	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	if key == "" || a.idempotency == nil {
		status, body := a.runCheckout(r, ownerID)
		writeRaw(w, status, body)
		return
	}
	if len(key) > maxIdempotencyKeyLength {
		verr := &domain.ValidationError{}
		verr.Add(idempotencyKeyHeader, fmt.Sprintf("must be at most %d characters", maxIdempotencyKeyLength))
		a.writeError(w, r, verr)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		a.writeError(w, r, fmt.Errorf("read request body: %w", err))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(payload))

	// Ключ действует в пределах пользователя.
	scopedKey := strconv.FormatInt(ownerID, 10) + ":" + key
	hash := idempotency.RequestHash([]byte(r.Method), []byte(r.URL.Path), payload)

	replay, err := a.idempotency.Begin(r.Context(), scopedKey, hash)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if replay != nil {
		w.Header().Set(idempotentReplayHeader, "true")
		writeRaw(w, replay.HTTPStatus, replay.Body)
		return
	}

	status, body := a.runCheckout(r, ownerID)
	a.idempotency.Complete(r.Context(), scopedKey, status, body)
	writeRaw(w, status, body)
}

// runCheckout выполняет checkout и возвращает готовый ответ, чтобы его можно было сохранить.
func (a *API) runCheckout(r *http.Request, ownerID int64) (int, []byte) {
	res, err := a.checkout.Checkout(r.Context(), ownerID)
	if err != nil {
		a.logRejected(r, err)
		status, body := errorResponse(err)
		return status, mustMarshal(body)
	}
	return http.StatusCreated, mustMarshal(toCheckoutView(res))
}

func (a *API) confirmOrder(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	verr := &domain.ValidationError{}
	if req.OrderID <= 0 {
		verr.Add("order_id", "must be a positive integer")
	}
	if _, ok := confirmOutcomes[req.Status]; !ok {
		verr.Add("status", "must be one of succeeded, pending, failed")
	}
	if err := verr.OrNil(); err != nil {
		a.writeError(w, r, err)
		return
	}

	order, err := a.checkout.Confirm(r.Context(), ownerFrom(r.Context()), req.OrderID, req.PaymentIntentID, req.Status)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]orderView{"order": toOrderView(order)})
}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := a.checkout.ListOrders(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}
	writeJSON(w, http.StatusOK, map[string][]orderView{"orders": views})
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	order, err := a.checkout.GetOrder(r.Context(), ownerFrom(r.Context()), orderID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]orderView{"order": toOrderView(order)})
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"status":"error","message":"Internal Server Error"}`)
	}
	return append(data, '\n')
}
