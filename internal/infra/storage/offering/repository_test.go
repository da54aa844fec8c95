package offering

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	"github.com/m04kA/SMC-TutorBooking/pkg/dbmetrics"
)

func newMock(t *testing.T) (*Repository, *dbmetrics.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := dbmetrics.Wrap(sqlDB, nil)
	return NewRepository(db), db, mock
}

func offeringRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(selectColumns).AddRow(
		int64(7),
		int64(42),
		int64(3),
		"Mathematics",
		[]byte(`[{"id":"algebra","name":"Algebra"}]`),
		[]byte(`[{"mode":"online","hourlyRate":500,"enabled":true}]`),
		[]byte(`[{"day":"Monday","windows":["09:00 - 11:00","13:00 - 14:00"]},{"day":"Tuesday","windows":[]}]`),
		[]byte(`{"individual":900,"group":300,"online":750}`),
		now,
		now,
	)
}

func TestCreate(t *testing.T) {
	repo, _, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subject_offerings")).
		WithArgs(int64(42), int64(3), "Mathematics", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	created, err := repo.Create(context.Background(), &domain.SubjectOffering{
		TutorID:     42,
		SubjectID:   3,
		SubjectName: "Mathematics",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.True(t, created.CreatedAt.Equal(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicate(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subject_offerings")).
		WillReturnError(&pq.Error{Code: pgUniqueViolation})

	_, err := repo.Create(context.Background(), &domain.SubjectOffering{TutorID: 42, SubjectID: 3, SubjectName: "Mathematics"})
	assert.ErrorIs(t, err, ErrDuplicateOffering)
}

func TestGetByID(t *testing.T) {
	repo, _, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM subject_offerings WHERE id = \$1$`).
		WithArgs(int64(7)).
		WillReturnRows(offeringRows(now))

	o, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(42), o.TutorID)
	assert.Equal(t, []domain.TopicRef{{ID: "algebra", Name: "Algebra"}}, o.SelectedTopics)
	assert.Equal(t, []domain.ModeRate{{Mode: domain.ModeOnline, HourlyRate: 500, Enabled: true}}, o.ModeRates)
	assert.Equal(t, []domain.TimeWindow{
		{Start: "09:00", End: "11:00"},
		{Start: "13:00", End: "14:00"},
	}, o.Availability.Windows(domain.Monday))
	assert.Empty(t, o.Availability.Windows(domain.Sunday))
	require.NotNil(t, o.LegacyRates)
	assert.Equal(t, 750.0, o.LegacyRates.Online)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(`SELECT (.+) FROM subject_offerings`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(selectColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrOfferingNotFound)
}

func TestGetByIDLocksInTransaction(t *testing.T) {
	repo, db, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM subject_offerings WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(offeringRows(now))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	_, err = repo.GetByID(dbmetrics.WithTx(context.Background(), tx), 7)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAvailabilityNotFound(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subject_offerings SET availability = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAvailability(context.Background(), 5, domain.WeeklySchedule{})
	assert.ErrorIs(t, err, ErrOfferingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	schedule, err := domain.NewWeeklySchedule(domain.DayAvailability{
		Day:     domain.Friday,
		Windows: []domain.TimeWindow{{Start: "10:00", End: "12:30"}},
	})
	require.NoError(t, err)

	original := &domain.SubjectOffering{
		ID:             1,
		TutorID:        2,
		SubjectID:      3,
		SubjectName:    "Physics",
		SelectedTopics: []domain.TopicRef{{ID: "optics", Name: "Optics"}},
		ModeRates:      []domain.ModeRate{{Mode: domain.ModeGroup, HourlyRate: 200, Enabled: true}},
		Availability:   schedule,
	}

	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original.Availability.Days(), decoded.Availability.Days())
	assert.Equal(t, original.ModeRates, decoded.ModeRates)
	assert.Nil(t, decoded.LegacyRates)
}
