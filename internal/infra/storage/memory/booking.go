package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/booking"
)

// BookingRepository in-memory репозиторий бронирований
// Один активный слот на (tutor, day, window) проверяется под блокировкой хранилища.
type BookingRepository struct {
	store *Store
}

// NewBookingRepository создает репозиторий бронирований поверх хранилища
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

// Create создает бронирование
func (r *BookingRepository) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.Status.IsActive() {
		for _, existing := range s.bookings {
			if existing.Status.IsActive() && existing.Slot() == b.Slot() {
				return nil, fmt.Errorf("%w: tutor=%d day=%s window=%s", bookingRepo.ErrSlotConflict, b.TutorID, b.Day, b.Window)
			}
		}
	}

	now := s.now()
	s.nextBookingID++
	b.ID = s.nextBookingID
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.TopicIDs == nil {
		b.TopicIDs = []string{}
	}

	s.bookings[b.ID] = copyBooking(b)
	return b, nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

// GetActiveBySlot получает активные бронирования слота
func (r *BookingRepository) GetActiveBySlot(_ context.Context, slot domain.SlotKey) ([]*domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool {
		return b.Status.IsActive() && b.Slot() == slot
	}, byID), nil
}

// GetActiveByTutorDay получает активные бронирования тьютора на день недели
func (r *BookingRepository) GetActiveByTutorDay(_ context.Context, tutorID int64, day domain.WeekDay) ([]*domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool {
		return b.Status.IsActive() && b.TutorID == tutorID && b.Day == day
	}, byWindowStart), nil
}

// List получает бронирования по фильтру, сначала новые
func (r *BookingRepository) List(_ context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool {
		if filter.StudentID != nil && b.StudentID != *filter.StudentID {
			return false
		}
		if filter.TutorID != nil && b.TutorID != *filter.TutorID {
			return false
		}
		if filter.Status != nil && b.Status != *filter.Status {
			return false
		}
		return true
	}, newestFirst), nil
}

// UpdateStatus переводит бронирование из from в to
func (r *BookingRepository) UpdateStatus(_ context.Context, id int64, from, to domain.BookingStatus) error {
	return r.transition(id, from, func(b *domain.Booking) {
		b.Status = to
	})
}

// Cancel отменяет бронирование, находящееся в статусе from
func (r *BookingRepository) Cancel(_ context.Context, id int64, from domain.BookingStatus, by domain.PartyRole, reason *string, at time.Time) error {
	return r.transition(id, from, func(b *domain.Booking) {
		b.Status = domain.StatusCancelled
		b.CancelledBy = &by
		if reason != nil {
			text := *reason
			b.CancellationReason = &text
		}
		b.CancelledAt = &at
	})
}

func (r *BookingRepository) transition(id int64, from domain.BookingStatus, apply func(b *domain.Booking)) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.Status != from {
		return fmt.Errorf("%w: booking id=%d", bookingRepo.ErrStatusChanged, id)
	}

	apply(b)
	b.UpdatedAt = s.now()
	return nil
}

func (r *BookingRepository) filter(match func(b *domain.Booking) bool, less func(a, b *domain.Booking) bool) []*domain.Booking {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if match(b) {
			result = append(result, copyBooking(b))
		}
	}
	sort.Slice(result, func(i, j int) bool { return less(result[i], result[j]) })
	return result
}

func byID(a, b *domain.Booking) bool {
	return a.ID < b.ID
}

func byWindowStart(a, b *domain.Booking) bool {
	if a.Window.Start != b.Window.Start {
		return a.Window.Start.IsBefore(b.Window.Start)
	}
	return a.ID < b.ID
}

func newestFirst(a, b *domain.Booking) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
