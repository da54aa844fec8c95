package offering

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	"github.com/m04kA/SMC-TutorBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-TutorBooking/pkg/psqlbuilder"
)

const (
	tableName = "subject_offerings"

	pgUniqueViolation = "23505"
)

var selectColumns = []string{
	"id",
	"tutor_id",
	"subject_id",
	"subject_name",
	"selected_topics",
	"mode_rates",
	"availability",
	"legacy_rates",
	"created_at",
	"updated_at",
}

// Repository репозиторий предложений тьюторов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория предложений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает предложение
func (r *Repository) Create(ctx context.Context, o *domain.SubjectOffering) (*domain.SubjectOffering, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	topics, rates, availability, legacy, err := encodeColumns(o)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"tutor_id",
			"subject_id",
			"subject_name",
			"selected_topics",
			"mode_rates",
			"availability",
			"legacy_rates",
		).
		Values(
			o.TutorID,
			o.SubjectID,
			o.SubjectName,
			string(topics),
			string(rates),
			string(availability),
			legacy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&o.ID, &createdAt, &updatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateOffering
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time

	return o, nil
}

// GetByID получает предложение по ID
// Внутри транзакции строка блокируется (FOR UPDATE) до её завершения
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.SubjectOffering, error) {
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

	o, err := scanOffering(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID - %w", err)
	}

	return o, nil
}

// ListByTutor получает все предложения тьютора
func (r *Repository) ListByTutor(ctx context.Context, tutorID int64) ([]*domain.SubjectOffering, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(selectColumns...).
		From(tableName).
		Where(squirrel.Eq{"tutor_id": tutorID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByTutor - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTutor - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	offerings := make([]*domain.SubjectOffering, 0)
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByTutor - %w", err)
		}
		offerings = append(offerings, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByTutor - rows error: %v", ErrScanRow, err)
	}

	return offerings, nil
}

// UpdateAvailability сохраняет расписание предложения
func (r *Repository) UpdateAvailability(ctx context.Context, id int64, schedule domain.WeeklySchedule) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	availability, err := json.Marshal(toDayRows(schedule))
	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Update(tableName).
		Set("availability", string(availability)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateAvailability", query, args)
}

// UpdatePricing сохраняет ставки, legacy ставки и темы предложения
func (r *Repository) UpdatePricing(ctx context.Context, o *domain.SubjectOffering) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	topics, rates, _, legacy, err := encodeColumns(o)
	if err != nil {
		return fmt.Errorf("%w: UpdatePricing - %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Update(tableName).
		Set("selected_topics", string(topics)).
		Set("mode_rates", string(rates)).
		Set("legacy_rates", legacy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": o.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdatePricing - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdatePricing", query, args)
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrOfferingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanOffering сканирует строку subject_offerings, декодируя JSONB колонки
func scanOffering(row rowScanner) (*domain.SubjectOffering, error) {
	var (
		o                           domain.SubjectOffering
		topics, rates, availability []byte
		legacy                      []byte
		createdAt, updatedAt        sql.NullTime
	)

	err := row.Scan(
		&o.ID,
		&o.TutorID,
		&o.SubjectID,
		&o.SubjectName,
		&topics,
		&rates,
		&availability,
		&legacy,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan offering: %v", ErrScanRow, err)
	}

	var topicRows []topicRow
	if err := json.Unmarshal(topics, &topicRows); err != nil {
		return nil, fmt.Errorf("%w: decode selected_topics: %v", ErrScanRow, err)
	}
	var rateRows []modeRateRow
	if err := json.Unmarshal(rates, &rateRows); err != nil {
		return nil, fmt.Errorf("%w: decode mode_rates: %v", ErrScanRow, err)
	}
	var dayRows []dayRow
	if err := json.Unmarshal(availability, &dayRows); err != nil {
		return nil, fmt.Errorf("%w: decode availability: %v", ErrScanRow, err)
	}
	var legacyRow *legacyRatesRow
	if len(legacy) > 0 {
		if err := json.Unmarshal(legacy, &legacyRow); err != nil {
			return nil, fmt.Errorf("%w: decode legacy_rates: %v", ErrScanRow, err)
		}
	}

	schedule, err := fromDayRows(dayRows)
	if err != nil {
		return nil, err
	}

	o.SelectedTopics = fromTopicRows(topicRows)
	o.ModeRates = fromModeRateRows(rateRows)
	o.Availability = schedule
	o.LegacyRates = fromLegacyRow(legacyRow)
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time

	return &o, nil
}

// encodeColumns сериализует JSONB колонки; legacy_rates = NULL, если не заданы
// lib/pq передает []byte как bytea, поэтому JSON уходит в запрос строкой
func encodeColumns(o *domain.SubjectOffering) (topics, rates, availability []byte, legacy interface{}, err error) {
	if topics, err = json.Marshal(toTopicRows(o.SelectedTopics)); err != nil {
		return
	}
	if rates, err = json.Marshal(toModeRateRows(o.ModeRates)); err != nil {
		return
	}
	if availability, err = json.Marshal(toDayRows(o.Availability)); err != nil {
		return
	}
	if row := toLegacyRow(o.LegacyRates); row != nil {
		var raw []byte
		if raw, err = json.Marshal(row); err != nil {
			return
		}
		legacy = string(raw)
	}
	return
}
