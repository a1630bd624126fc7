package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const maxBodyBytes = 1 << 20

// errorBody: тело ответа с ошибкой.
type errorBody struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusForKind отображает класс доменной ошибки в HTTP-статус.
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalid:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse строит статус и тело ответа для ошибки. Детали внутренних ошибок наружу не уходят.
func errorResponse(err error) (int, errorBody) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorBody{
			Status:  "validation_error",
			Message: "Request validation failed",
			Errors:  verr.Fields,
		}
	}

	kind := domain.KindOf(err)
	status := statusForKind(kind)
	sentinel := domain.SentinelOf(err)
	switch {
	case kind == domain.KindInternal || kind == domain.KindUnavailable || sentinel == nil:
		return status, errorBody{Status: "error", Message: "Internal Server Error"}
	case kind == domain.KindUnauthenticated:
		return status, errorBody{Status: "unauthorized", Message: sentinel.Error()}
	default:
		return status, errorBody{Status: kind.String(), Message: sentinel.Error()}
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	a.logRejected(r, err)
	writeJSON(w, status, body)
}

// logRejected пишет ошибку запроса: 5xx как error, остальное как debug.
func (a *API) logRejected(r *http.Request, err error) {
	status, _ := errorResponse(err)
	entry := a.logger.WithError(err).WithFields(log.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
		"request_id": middleware.GetReqID(r.Context()),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
}

// decodeJSON читает тело запроса в dst; пустое тело даёт нулевое значение.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		verr := &domain.ValidationError{}
		verr.Add("body", "must be a valid JSON object")
		return verr
	}
	return nil
}

// pathID разбирает положительный id из параметра маршрута.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		verr := &domain.ValidationError{}
		verr.Add(name, "must be a positive integer")
		return 0, verr
	}
	return id, nil
}

// queryFloat разбирает необязательный параметр запроса; пустое значение даёт nil.
func queryFloat(r *http.Request, name string, verr *domain.ValidationError) *float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		verr.Add(name, fmt.Sprintf("must be a number, got %q", raw))
		return nil
	}
	return &value
}

// queryInt разбирает необязательный целый параметр; пустое значение даёт 0.
func queryInt(r *http.Request, name string, verr *domain.ValidationError) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		verr.Add(name, "must be an integer")
		return 0
	}
	return value
}
