package memory

import (
	"context"
	"sort"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	offeringRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/offering"
)

// OfferingRepository in-memory репозиторий предложений
// Возвращает те же ошибки, что и postgres репозиторий.
type OfferingRepository struct {
	store *Store
}

// NewOfferingRepository создает репозиторий предложений поверх хранилища
func NewOfferingRepository(store *Store) *OfferingRepository {
	return &OfferingRepository{store: store}
}

// Create создает предложение, пара (tutor, subject) уникальна
func (r *OfferingRepository) Create(_ context.Context, o *domain.SubjectOffering) (*domain.SubjectOffering, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.offerings {
		if existing.TutorID == o.TutorID && existing.SubjectID == o.SubjectID {
			return nil, offeringRepo.ErrDuplicateOffering
		}
	}

	now := s.now()
	s.nextOfferingID++
	o.ID = s.nextOfferingID
	o.CreatedAt = now
	o.UpdatedAt = now

	s.offerings[o.ID] = copyOffering(o)
	return o, nil
}

// GetByID получает предложение по ID
func (r *OfferingRepository) GetByID(_ context.Context, id int64) (*domain.SubjectOffering, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.offerings[id]
	if !ok {
		return nil, offeringRepo.ErrOfferingNotFound
	}
	return copyOffering(o), nil
}

// ListByTutor получает предложения тьютора, отсортированные по ID
func (r *OfferingRepository) ListByTutor(_ context.Context, tutorID int64) ([]*domain.SubjectOffering, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SubjectOffering, 0)
	for _, o := range s.offerings {
		if o.TutorID == tutorID {
			result = append(result, copyOffering(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// UpdateAvailability сохраняет расписание предложения
func (r *OfferingRepository) UpdateAvailability(_ context.Context, id int64, schedule domain.WeeklySchedule) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offerings[id]
	if !ok {
		return offeringRepo.ErrOfferingNotFound
	}
	o.Availability = schedule
	o.UpdatedAt = s.now()
	return nil
}

// UpdatePricing сохраняет ставки, legacy ставки и темы предложения
func (r *OfferingRepository) UpdatePricing(_ context.Context, updated *domain.SubjectOffering) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offerings[updated.ID]
	if !ok {
		return offeringRepo.ErrOfferingNotFound
	}

	c := copyOffering(updated)
	o.SelectedTopics = c.SelectedTopics
	o.ModeRates = c.ModeRates
	o.LegacyRates = c.LegacyRates
	o.UpdatedAt = s.now()
	return nil
}
