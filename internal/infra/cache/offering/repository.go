package offering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	offeringRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/offering"
	"github.com/m04kA/SMC-TutorBooking/pkg/dbmetrics"
)

const keyPrefix = "offering:"

// Source репозиторий, который оборачивает кэш
type Source interface {
	Create(ctx context.Context, o *domain.SubjectOffering) (*domain.SubjectOffering, error)
	GetByID(ctx context.Context, id int64) (*domain.SubjectOffering, error)
	ListByTutor(ctx context.Context, tutorID int64) ([]*domain.SubjectOffering, error)
	UpdateAvailability(ctx context.Context, id int64, schedule domain.WeeklySchedule) error
	UpdatePricing(ctx context.Context, o *domain.SubjectOffering) error
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Repository кэширующий декоратор репозитория предложений
// Внутри транзакции всегда читает источник, чтобы сохранить блокировку строки.
// Ошибки кэша не прерывают запрос: логируются и запрос уходит в источник.
type Repository struct {
	source Source
	store  Store
	ttl    time.Duration
	logger Logger
}

// NewRepository создает кэширующий репозиторий
func NewRepository(source Source, store Store, ttl time.Duration, logger Logger) *Repository {
	return &Repository{
		source: source,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Create создает предложение в источнике
func (r *Repository) Create(ctx context.Context, o *domain.SubjectOffering) (*domain.SubjectOffering, error) {
	return r.source.Create(ctx, o)
}

// GetByID получает предложение из кэша или источника
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.SubjectOffering, error) {
	if dbmetrics.IsInTransaction(ctx) {
		return r.source.GetByID(ctx, id)
	}

	key := cacheKey(id)

	raw, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		o, decodeErr := offeringRepo.Decode(raw)
		if decodeErr == nil {
			return o, nil
		}
		r.logger.Warn("OfferingCache: drop corrupted entry %s: %v", key, decodeErr)
		r.invalidate(ctx, id)
	case !errors.Is(err, ErrCacheMiss):
		r.logger.Warn("OfferingCache: get %s: %v", key, err)
	}

	o, err := r.source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := offeringRepo.Encode(o); err != nil {
		r.logger.Warn("OfferingCache: encode offering id=%d: %v", id, err)
	} else if err := r.store.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("OfferingCache: set %s: %v", key, err)
	}

	return o, nil
}

// ListByTutor читает источник без кэширования
func (r *Repository) ListByTutor(ctx context.Context, tutorID int64) ([]*domain.SubjectOffering, error) {
	return r.source.ListByTutor(ctx, tutorID)
}

// UpdateAvailability сохраняет расписание и сбрасывает кэш
func (r *Repository) UpdateAvailability(ctx context.Context, id int64, schedule domain.WeeklySchedule) error {
	if err := r.source.UpdateAvailability(ctx, id, schedule); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// UpdatePricing сохраняет ставки и сбрасывает кэш
func (r *Repository) UpdatePricing(ctx context.Context, o *domain.SubjectOffering) error {
	if err := r.source.UpdatePricing(ctx, o); err != nil {
		return err
	}
	r.invalidate(ctx, o.ID)
	return nil
}

func (r *Repository) invalidate(ctx context.Context, id int64) {
	if err := r.store.Del(ctx, cacheKey(id)); err != nil {
		r.logger.Warn("OfferingCache: invalidate offering id=%d: %v", id, err)
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}
