// Package idempotency защищает неидемпотентные запросы ключом Idempotency-Key
// и чистит просроченные ключи.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// DefaultTTL: сколько хранится ответ для повтора.
const DefaultTTL = 24 * time.Hour

// Response: сохранённый ответ, который отдаётся при повторе запроса.
type Response struct {
	HTTPStatus int
	Body       []byte
}

// Guard: обёртка над репозиторием ключей идемпотентности.
type Guard struct {
	repo   domain.IdempotencyRepository
	ttl    time.Duration
	logger *log.Entry
}

// NewGuard создаёт guard; ttl <= 0 заменяется DefaultTTL.
func NewGuard(repo domain.IdempotencyRepository, ttl time.Duration, logger *log.Entry) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.WithField("component", "idempotency")
	}
	return &Guard{repo: repo, ttl: ttl, logger: logger}
}

// RequestHash строит отпечаток запроса из его частей.
func RequestHash(parts ...[]byte) string {
	h := sha256.New()
	for _, part := range parts {
		_, _ = fmt.Fprintf(h, "%d:", len(part))
		_, _ = h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Begin занимает ключ. Если ключ уже завершён, возвращает сохранённый ответ для повтора.
// Тот же ключ с другим телом даёт ErrIdempotencyHashMismatch, незавершённый, ErrIdempotencyInProgress.
func (g *Guard) Begin(ctx context.Context, key, requestHash string) (*Response, error) {
	record, err := g.repo.CreateProcessing(ctx, key, requestHash, time.Now().UTC().Add(g.ttl))
	if err == nil {
		return nil, nil
	}

	switch {
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return nil, err
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone, domain.IdempotencyStatusFailed:
			return &Response{HTTPStatus: record.HTTPStatus, Body: record.ResponseBody}, nil
		case domain.IdempotencyStatusProcessing:
			return nil, domain.ErrIdempotencyInProgress
		default:
			return nil, fmt.Errorf("unknown idempotency record status %q", record.Status)
		}
	default:
		return nil, fmt.Errorf("create idempotency record: %w", err)
	}
}

// Complete сохраняет ответ: 2xx как done, остальные как failed. Ошибка сохранения только логируется.
func (g *Guard) Complete(ctx context.Context, key string, httpStatus int, body []byte) {
	ctx = context.WithoutCancel(ctx)

	var err error
	if httpStatus >= 200 && httpStatus < 300 {
		err = g.repo.MarkDone(ctx, key, body, httpStatus)
	} else {
		err = g.repo.MarkFailed(ctx, key, body, httpStatus)
	}
	if err != nil {
		g.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotent response")
	}
}
