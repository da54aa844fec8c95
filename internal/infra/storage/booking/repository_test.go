package booking

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	"github.com/m04kA/SMC-TutorBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-TutorBooking/pkg/ptr"
)

func newMock(t *testing.T) (*Repository, *dbmetrics.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := dbmetrics.Wrap(sqlDB, nil)
	return NewRepository(db), db, mock
}

func bookingRow(id int64, status string, now time.Time) []driver.Value {
	return []driver.Value{
		id,
		int64(10),
		int64(20),
		int64(7),
		"Mathematics",
		"{algebra,geometry}",
		"Monday",
		"09:00:00",
		"11:00:00",
		int64(2),
		"online",
		1000.0,
		"0123456789",
		status,
		nil,
		nil,
		nil,
		time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		now,
		now,
	}
}

func newBooking() *domain.Booking {
	return &domain.Booking{
		StudentID:         10,
		TutorID:           20,
		SubjectOfferingID: 7,
		SubjectName:       "Mathematics",
		TopicIDs:          []string{"algebra"},
		Day:               domain.Monday,
		Window:            domain.TimeWindow{Start: "09:00", End: "11:00"},
		DurationHours:     2,
		Mode:              domain.ModeOnline,
		TotalPrice:        1000,
		ContactNumber:     "0123456789",
		Status:            domain.StatusPending,
		SessionDate:       time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreate(t *testing.T) {
	repo, _, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	created, err := repo.Create(context.Background(), newBooking())
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.True(t, created.UpdatedAt.Equal(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSlotConflict(t *testing.T) {
	tests := []struct {
		name string
		code pq.ErrorCode
	}{
		{name: "unique violation", code: pgUniqueViolation},
		{name: "serialization failure", code: pgSerializationFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, mock := newMock(t)

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
				WillReturnError(&pq.Error{Code: tt.code})

			_, err := repo.Create(context.Background(), newBooking())
			assert.ErrorIs(t, err, ErrSlotConflict)
		})
	}
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(fmt.Errorf("commit: %w", &pq.Error{Code: pgSerializationFailure})))
	assert.False(t, IsConflict(&pq.Error{Code: "23503"}))
	assert.False(t, IsConflict(errors.New("plain")))
}

func TestGetByID(t *testing.T) {
	repo, _, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \$1$`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(selectColumns).AddRow(bookingRow(1, "pending", now)...))

	b, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"algebra", "geometry"}, b.TopicIDs)
	assert.Equal(t, domain.Monday, b.Day)
	assert.Equal(t, domain.TimeWindow{Start: "09:00", End: "11:00"}, b.Window)
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Nil(t, b.CancelledBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(selectColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetActiveBySlotLocksInTransaction(t *testing.T) {
	repo, db, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE (.+)status IN \(\$\d,\$\d\)(.+) ORDER BY id ASC FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(selectColumns).AddRow(bookingRow(3, "confirmed", now)...))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	active, err := repo.GetActiveBySlot(dbmetrics.WithTx(context.Background(), tx), domain.SlotKey{
		TutorID: 20,
		Day:     domain.Monday,
		Window:  domain.TimeWindow{Start: "09:00", End: "11:00"},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Len(t, active, 1)
	assert.Equal(t, domain.StatusConfirmed, active[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByStudent(t *testing.T) {
	repo, _, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(10), "cancelled").
		WillReturnRows(sqlmock.NewRows(selectColumns).
			AddRow(bookingRow(2, "cancelled", now)...).
			AddRow(bookingRow(1, "cancelled", now)...))

	status := domain.StatusCancelled
	bookings, err := repo.List(context.Background(), domain.BookingsFilter{
		StudentID: ptr.Ptr(int64(10)),
		Status:    &status,
	})
	require.NoError(t, err)

	require.Len(t, bookings, 2)
	assert.Equal(t, int64(2), bookings[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEmpty(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WillReturnRows(sqlmock.NewRows(selectColumns))

	bookings, err := repo.List(context.Background(), domain.BookingsFilter{TutorID: ptr.Ptr(int64(20))})
	require.NoError(t, err)
	assert.NotNil(t, bookings)
	assert.Empty(t, bookings)
}

func TestUpdateStatus(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3")).
		WithArgs("confirmed", int64(1), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), 1, domain.StatusPending, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusChangedConcurrently(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 1, domain.StatusPending, domain.StatusConfirmed)
	assert.ErrorIs(t, err, ErrStatusChanged)
}

func TestCancel(t *testing.T) {
	repo, _, mock := newMock(t)
	at := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1, cancelled_by = $2, cancellation_reason = $3, cancelled_at = $4")).
		WithArgs("cancelled", "student", "sick", at, int64(1), "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Cancel(context.Background(), 1, domain.StatusConfirmed, domain.RoleStudent, ptr.Ptr("sick"), at)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
