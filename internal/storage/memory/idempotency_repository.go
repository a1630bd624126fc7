package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// defaultCheckoutKeyTTL применяется, когда вызывающий не задал срок жизни ключа.
const defaultCheckoutKeyTTL = 24 * time.Hour

// idempotencyRepositoryInMemory хранит ключи checkout отдельно от state: ключ
// фиксируется до начала транзакции оформления и переживает её откат.
type idempotencyRepositoryInMemory struct {
	mu   sync.Mutex
	keys map[string]*domain.IdempotencyRecord
	now  func() time.Time
}

func newIdempotencyRepository() *idempotencyRepositoryInMemory {
	return &idempotencyRepositoryInMemory{
		keys: make(map[string]*domain.IdempotencyRecord),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *idempotencyRepositoryInMemory) CreateProcessing(_ context.Context, key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	key, err := normalizeIdempotencyKey(key)
	if err != nil {
		return domain.IdempotencyRecord{}, err
	}
	requestHash = strings.TrimSpace(requestHash)
	if requestHash == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyRequestHashRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if held, ok := r.keys[key]; ok {
		if held.RequestHash != requestHash {
			return snapshotIdempotency(held), domain.ErrIdempotencyHashMismatch
		}
		return snapshotIdempotency(held), domain.ErrIdempotencyKeyAlreadyExists
	}

	now := r.now()
	if ttlAt.IsZero() {
		ttlAt = now.Add(defaultCheckoutKeyTTL)
	}
	held := &domain.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Status:      domain.IdempotencyStatusProcessing,
		TTLAt:       ttlAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.keys[key] = held
	return snapshotIdempotency(held), nil
}

func (r *idempotencyRepositoryInMemory) Get(_ context.Context, key string) (domain.IdempotencyRecord, error) {
	key, err := normalizeIdempotencyKey(key)
	if err != nil {
		return domain.IdempotencyRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	held, ok := r.keys[key]
	if !ok {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
	}
	return snapshotIdempotency(held), nil
}

// MarkDone сохраняет ответ успешного checkout для повторов с тем же ключом.
func (r *idempotencyRepositoryInMemory) MarkDone(_ context.Context, key string, responseBody []byte, httpStatus int) error {
	return r.finish(key, domain.IdempotencyStatusDone, responseBody, httpStatus)
}

func (r *idempotencyRepositoryInMemory) MarkFailed(_ context.Context, key string, responseBody []byte, httpStatus int) error {
	return r.finish(key, domain.IdempotencyStatusFailed, responseBody, httpStatus)
}

// DeleteExpired удаляет ключи с TTLAt <= before, начиная с самых старых; limit <= 0 снимает ограничение.
func (r *idempotencyRepositoryInMemory) DeleteExpired(_ context.Context, before time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if before.IsZero() {
		before = r.now()
	}

	expired := make([]*domain.IdempotencyRecord, 0)
	for _, held := range r.keys {
		if !held.TTLAt.After(before) {
			expired = append(expired, held)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].TTLAt.Before(expired[j].TTLAt) })
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}

	for _, held := range expired {
		delete(r.keys, held.Key)
	}
	return len(expired), nil
}

func (r *idempotencyRepositoryInMemory) finish(key string, status domain.IdempotencyStatus, responseBody []byte, httpStatus int) error {
	key, err := normalizeIdempotencyKey(key)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	held, ok := r.keys[key]
	if !ok {
		return domain.ErrIdempotencyKeyNotFound
	}
	held.Status = status
	held.ResponseBody = append([]byte(nil), responseBody...)
	held.HTTPStatus = httpStatus
	held.UpdatedAt = r.now()
	return nil
}

func normalizeIdempotencyKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", domain.ErrIdempotencyKeyRequired
	}
	return key, nil
}

func snapshotIdempotency(held *domain.IdempotencyRecord) domain.IdempotencyRecord {
	out := *held
	out.ResponseBody = append([]byte(nil), held.ResponseBody...)
	return out
}

var _ domain.IdempotencyRepository = (*idempotencyRepositoryInMemory)(nil)
