package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	"github.com/m04kA/SMC-TutorBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-TutorBooking/pkg/psqlbuilder"
)

const (
	tableName = "bookings"

	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
)

var selectColumns = []string{
	"id",
	"student_id",
	"tutor_id",
	"subject_offering_id",
	"subject_name",
	"topic_ids",
	"day",
	"window_start",
	"window_end",
	"duration_hours",
	"mode",
	"total_price",
	"contact_number",
	"status",
	"cancellation_reason",
	"cancelled_by",
	"cancelled_at",
	"session_date",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// IsConflict возвращает true для ошибок БД, означающих занятый слот:
// нарушение частичного уникального индекса или конфликт сериализации
func IsConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pgUniqueViolation || pqErr.Code == pgSerializationFailure
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её.
// Второе активное бронирование того же слота отклоняется индексом uq_bookings_active_slot.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"student_id",
			"tutor_id",
			"subject_offering_id",
			"subject_name",
			"topic_ids",
			"day",
			"window_start",
			"window_end",
			"duration_hours",
			"mode",
			"total_price",
			"contact_number",
			"status",
			"session_date",
		).
		Values(
			booking.StudentID,
			booking.TutorID,
			booking.SubjectOfferingID,
			booking.SubjectName,
			pq.Array(booking.TopicIDs),
			booking.Day,
			booking.Window.Start,
			booking.Window.End,
			booking.DurationHours,
			booking.Mode,
			booking.TotalPrice,
			booking.ContactNumber,
			booking.Status,
			booking.SessionDate,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if IsConflict(err) {
			return nil, fmt.Errorf("%w: tutor=%d day=%s window=%s", ErrSlotConflict, booking.TutorID, booking.Day, booking.Window)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetActiveBySlot получает активные бронирования слота тьютора
// Используется при создании бронирования внутри транзакции - строки блокируются (FOR UPDATE)
func (r *Repository) GetActiveBySlot(ctx context.Context, slot domain.SlotKey) ([]*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(selectColumns...).
		From(tableName).
		Where(squirrel.Eq{
			"tutor_id":     slot.TutorID,
			"day":          slot.Day,
			"window_start": slot.Window.Start,
			"window_end":   slot.Window.End,
			"status":       activeStatusStrings(),
		}).
		OrderBy("id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	return r.query(ctx, "GetActiveBySlot", selectBuilder)
}

// GetActiveByTutorDay получает активные бронирования тьютора на день недели
func (r *Repository) GetActiveByTutorDay(ctx context.Context, tutorID int64, day domain.WeekDay) ([]*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(selectColumns...).
		From(tableName).
		Where(squirrel.Eq{
			"tutor_id": tutorID,
			"day":      day,
			"status":   activeStatusStrings(),
		}).
		OrderBy("window_start ASC")

	return r.query(ctx, "GetActiveByTutorDay", selectBuilder)
}

// List получает бронирования участника с фильтрацией
// Сортировка: сначала новые
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(selectColumns...).
		From(tableName).
		OrderBy("created_at DESC", "id DESC")

	if filter.StudentID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"student_id": *filter.StudentID})
	}
	if filter.TutorID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"tutor_id": *filter.TutorID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	return r.query(ctx, "List", selectBuilder)
}

// UpdateStatus переводит бронирование из статуса from в статус to
// Обновление условное: если статус уже изменился, возвращается ErrStatusChanged
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	query, args, err := psqlbuilder.Update(tableName).
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, "UpdateStatus", id, query, args)
}

// Cancel отменяет бронирование, находящееся в статусе from
func (r *Repository) Cancel(ctx context.Context, id int64, from domain.BookingStatus, by domain.PartyRole, reason *string, at time.Time) error {
	query, args, err := psqlbuilder.Update(tableName).
		Set("status", domain.StatusCancelled).
		Set("cancelled_by", by).
		Set("cancellation_reason", reason).
		Set("cancelled_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, "Cancel", id, query, args)
}

func (r *Repository) execTransition(ctx context.Context, op string, id int64, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s - booking id=%d", ErrStatusChanged, op, id)
	}

	return nil
}

func (r *Repository) query(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.TutorID,
		&booking.SubjectOfferingID,
		&booking.SubjectName,
		pq.Array(&booking.TopicIDs),
		&booking.Day,
		&booking.Window.Start,
		&booking.Window.End,
		&booking.DurationHours,
		&booking.Mode,
		&booking.TotalPrice,
		&booking.ContactNumber,
		&booking.Status,
		&booking.CancellationReason,
		&booking.CancelledBy,
		&booking.CancelledAt,
		&booking.SessionDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if booking.TopicIDs == nil {
		booking.TopicIDs = []string{}
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func activeStatusStrings() []string {
	result := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		result[i] = string(s)
	}
	return result
}
