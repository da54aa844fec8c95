package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/booking"
	offeringRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/offering"
	"github.com/m04kA/SMC-TutorBooking/pkg/dbmetrics"
)

func slotBooking(studentID int64) *domain.Booking {
	return &domain.Booking{
		StudentID:     studentID,
		TutorID:       1,
		Day:           domain.Monday,
		Window:        domain.TimeWindow{Start: "09:00", End: "11:00"},
		DurationHours: 2,
		Mode:          domain.ModeOnline,
		Status:        domain.StatusPending,
	}
}

func TestOfferingRepositoryDuplicate(t *testing.T) {
	repo := NewOfferingRepository(NewStore())
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.SubjectOffering{TutorID: 1, SubjectID: 2, SubjectName: "Math"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.SubjectOffering{TutorID: 1, SubjectID: 2, SubjectName: "Math"})
	assert.ErrorIs(t, err, offeringRepo.ErrDuplicateOffering)
}

func TestOfferingRepositoryReturnsCopies(t *testing.T) {
	repo := NewOfferingRepository(NewStore())
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.SubjectOffering{
		TutorID:   1,
		SubjectID: 2,
		ModeRates: []domain.ModeRate{{Mode: domain.ModeOnline, HourlyRate: 100, Enabled: true}},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	got.ModeRates[0].HourlyRate = 999

	again, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, again.ModeRates[0].HourlyRate)
}

func TestOfferingRepositoryNotFound(t *testing.T) {
	repo := NewOfferingRepository(NewStore())

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, offeringRepo.ErrOfferingNotFound)

	err = repo.UpdateAvailability(context.Background(), 42, domain.WeeklySchedule{})
	assert.ErrorIs(t, err, offeringRepo.ErrOfferingNotFound)
}

func TestBookingRepositorySlotConflict(t *testing.T) {
	repo := NewBookingRepository(NewStore())
	ctx := context.Background()

	first, err := repo.Create(ctx, slotBooking(10))
	require.NoError(t, err)

	_, err = repo.Create(ctx, slotBooking(11))
	assert.ErrorIs(t, err, bookingRepo.ErrSlotConflict)

	// После отмены слот снова свободен
	require.NoError(t, repo.Cancel(ctx, first.ID, domain.StatusPending, domain.RoleStudent, nil, time.Now()))
	_, err = repo.Create(ctx, slotBooking(11))
	assert.NoError(t, err)
}

func TestBookingRepositoryTransitionCAS(t *testing.T) {
	repo := NewBookingRepository(NewStore())
	ctx := context.Background()

	b, err := repo.Create(ctx, slotBooking(10))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, b.ID, domain.StatusPending, domain.StatusConfirmed))

	err = repo.UpdateStatus(ctx, b.ID, domain.StatusPending, domain.StatusCancelled)
	assert.ErrorIs(t, err, bookingRepo.ErrStatusChanged)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
}

func TestBookingRepositoryListNewestFirst(t *testing.T) {
	store := NewStore()
	base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	var tick int64
	store.now = func() time.Time {
		return base.Add(time.Duration(atomic.AddInt64(&tick, 1)) * time.Minute)
	}
	repo := NewBookingRepository(store)
	ctx := context.Background()

	for i, window := range []domain.TimeWindow{
		{Start: "09:00", End: "10:00"},
		{Start: "11:00", End: "12:00"},
	} {
		b := slotBooking(int64(10 + i))
		b.Window = window
		_, err := repo.Create(ctx, b)
		require.NoError(t, err)
	}

	tutorID := int64(1)
	list, err := repo.List(ctx, domain.BookingsFilter{TutorID: &tutorID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)

	active, err := repo.GetActiveByTutorDay(ctx, 1, domain.Monday)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, domain.TimeWindow{Start: "09:00", End: "10:00"}, active[0].Window)
}

func TestTxManagerMarksContextAndReusesOuter(t *testing.T) {
	tm := NewTxManager(NewStore())

	err := tm.DoSerializable(context.Background(), func(txCtx context.Context) error {
		assert.True(t, dbmetrics.IsInTransaction(txCtx))
		// вложенный вызов не должен заблокироваться
		return tm.Do(txCtx, func(inner context.Context) error {
			assert.True(t, dbmetrics.IsInTransaction(inner))
			return nil
		})
	})
	assert.NoError(t, err)
}

func TestTxManagerSerializesCheckThenCreate(t *testing.T) {
	store := NewStore()
	tm := NewTxManager(store)
	repo := NewBookingRepository(store)

	const workers = 20
	var wg sync.WaitGroup
	var created, conflicts int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(studentID int64) {
			defer wg.Done()
			err := tm.DoSerializable(context.Background(), func(txCtx context.Context) error {
				b := slotBooking(studentID)
				active, err := repo.GetActiveBySlot(txCtx, b.Slot())
				if err != nil {
					return err
				}
				if len(active) > 0 {
					return bookingRepo.ErrSlotConflict
				}
				_, err = repo.Create(txCtx, b)
				return err
			})
			switch {
			case err == nil:
				atomic.AddInt64(&created, 1)
			case errors.Is(err, bookingRepo.ErrSlotConflict):
				atomic.AddInt64(&conflicts, 1)
			}
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Equal(t, int64(1), created)
	assert.Equal(t, int64(workers-1), conflicts)
}
