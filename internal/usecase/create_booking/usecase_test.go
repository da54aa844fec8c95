package create_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	offeringCache "github.com/m04kA/SMC-TutorBooking/internal/infra/cache/offering"
	"github.com/m04kA/SMC-TutorBooking/internal/infra/events"
	"github.com/m04kA/SMC-TutorBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-TutorBooking/pkg/logger"
	"github.com/m04kA/SMC-TutorBooking/pkg/ptr"
)

// 2026-10-14 - среда
var fixedNow = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeMetrics struct {
	mu       sync.Mutex
	created  map[string]int
	rejected map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{created: map[string]int{}, rejected: map[string]int{}}
}

func (m *fakeMetrics) BookingCreated(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created[mode]++
}

func (m *fakeMetrics) BookingRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type fixture struct {
	uc         *UseCase
	store      *memory.Store
	offerings  *memory.OfferingRepository
	bookings   *memory.BookingRepository
	metrics    *fakeMetrics
	publisher  *fakePublisher
	offeringID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	offerings := memory.NewOfferingRepository(store)
	bookings := memory.NewBookingRepository(store)

	schedule, err := domain.NewWeeklySchedule(domain.DayAvailability{
		Day: domain.Monday,
		Windows: []domain.TimeWindow{
			{Start: "09:00", End: "11:00"},
			{Start: "13:00", End: "14:00"},
		},
	})
	require.NoError(t, err)

	offering, err := offerings.Create(context.Background(), &domain.SubjectOffering{
		TutorID:        100,
		SubjectID:      1,
		SubjectName:    "Mathematics",
		SelectedTopics: []domain.TopicRef{{ID: "algebra", Name: "Algebra"}, {ID: "geometry", Name: "Geometry"}},
		ModeRates: []domain.ModeRate{
			{Mode: domain.ModeOnline, HourlyRate: 500, Enabled: true},
			{Mode: domain.ModeGroup, HourlyRate: 200, Enabled: false},
		},
		Availability: schedule,
		LegacyRates:  &domain.LegacyRates{Individual: 900},
	})
	require.NoError(t, err)

	metrics := newFakeMetrics()
	publisher := &fakePublisher{}

	uc := NewUseCase(bookings, offerings, memory.NewTxManager(store), publisher, metrics, time.UTC, logger.NewNop())
	uc.timeProvider = fixedTime{now: fixedNow}

	return &fixture{
		uc:         uc,
		store:      store,
		offerings:  offerings,
		bookings:   bookings,
		metrics:    metrics,
		publisher:  publisher,
		offeringID: offering.ID,
	}
}

func (f *fixture) request() *Request {
	return &Request{
		StudentID:     7,
		OfferingID:    f.offeringID,
		TopicIDs:      []string{"algebra"},
		Day:           "Monday",
		TimeSlot:      "09:00 - 11:00",
		DurationHours: 2,
		Mode:          "online",
		ContactNumber: "0123456789",
	}
}

func TestExecuteCreatesPendingBooking(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.ClientTotal = ptr.Ptr(1.0)

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, resp.Status)
	assert.Equal(t, 1000.0, resp.TotalPrice)
	assert.Equal(t, 500.0, resp.HourlyRate)
	assert.Equal(t, int64(100), resp.TutorID)
	assert.Equal(t, "2026-10-19", resp.SessionDate.Format(domain.DateFormat))
	assert.Equal(t, domain.SessionUpcoming, resp.SessionStatus)

	assert.Equal(t, 1, f.metrics.created["online"])
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.TypeBookingCreated, f.publisher.events[0].Type)
}

func TestExecuteUsesLegacyRateFallback(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.Mode = "home-visit"
	req.TimeSlot = "13:00 - 14:00"
	req.DurationHours = 1

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 900.0, resp.TotalPrice)
}

func TestExecuteValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(r *Request)
		wantErr error
		reason  string
	}{
		{
			name:    "duration out of range",
			modify:  func(r *Request) { r.DurationHours = 4 },
			wantErr: ErrInvalidInput,
			reason:  reasonInvalidInput,
		},
		{
			name:    "unknown mode",
			modify:  func(r *Request) { r.Mode = "carpool" },
			wantErr: ErrInvalidInput,
			reason:  reasonInvalidInput,
		},
		{
			name:    "too many topics",
			modify:  func(r *Request) { r.TopicIDs = []string{"a", "b", "c", "d", "e", "f"} },
			wantErr: ErrInvalidInput,
			reason:  reasonInvalidInput,
		},
		{
			name:    "tutor books own offering",
			modify:  func(r *Request) { r.StudentID = 100 },
			wantErr: ErrInvalidInput,
			reason:  reasonInvalidInput,
		},
		{
			name:    "offering not found",
			modify:  func(r *Request) { r.OfferingID = 999; r.ContactNumber = "bad" },
			wantErr: ErrOfferingNotFound,
			reason:  reasonNotFound,
		},
		{
			name:    "disabled mode without legacy rate",
			modify:  func(r *Request) { r.Mode = "group"; r.ContactNumber = "bad" },
			wantErr: ErrModeUnavailable,
			reason:  reasonModeUnavailable,
		},
		{
			name:    "no window long enough",
			modify:  func(r *Request) { r.DurationHours = 3; r.ContactNumber = "bad" },
			wantErr: ErrNoAvailability,
			reason:  reasonNoAvailability,
		},
		{
			name:    "day without windows",
			modify:  func(r *Request) { r.Day = "Sunday" },
			wantErr: ErrNoAvailability,
			reason:  reasonNoAvailability,
		},
		{
			name:    "window too short for duration",
			modify:  func(r *Request) { r.TimeSlot = "13:00 - 14:00"; r.ContactNumber = "bad" },
			wantErr: ErrInvalidSlot,
			reason:  reasonInvalidSlot,
		},
		{
			name:    "window not declared",
			modify:  func(r *Request) { r.TimeSlot = "09:00 - 10:00"; r.DurationHours = 1 },
			wantErr: ErrInvalidSlot,
			reason:  reasonInvalidSlot,
		},
		{
			name:    "contact with letters",
			modify:  func(r *Request) { r.ContactNumber = "01234abcde"; r.TopicIDs = []string{"unknown"} },
			wantErr: ErrInvalidContact,
			reason:  reasonInvalidContact,
		},
		{
			name:    "contact too long",
			modify:  func(r *Request) { r.ContactNumber = "0123456789012345" },
			wantErr: ErrInvalidContact,
			reason:  reasonInvalidContact,
		},
		{
			name:    "topic not offered",
			modify:  func(r *Request) { r.TopicIDs = []string{"calculus"} },
			wantErr: ErrInvalidTopic,
			reason:  reasonInvalidTopic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := f.request()
			tt.modify(req)

			_, err := f.uc.Execute(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, f.metrics.rejected[tt.reason])
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestExecuteSlotConflictAfterFirstBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)

	second := f.request()
	second.StudentID = 8
	_, err = f.uc.Execute(context.Background(), second)
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, 1, f.metrics.rejected[reasonSlotConflict])
}

func TestExecuteConcurrentRequestsProduceOneBooking(t *testing.T) {
	f := newFixture(t)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := f.request()
			req.StudentID = int64(200 + i)
			_, errs[i] = f.uc.Execute(context.Background(), req)
		}(i)
	}
	wg.Wait()

	var created, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)

	active, err := f.bookings.GetActiveBySlot(context.Background(), domain.SlotKey{
		TutorID: 100,
		Day:     domain.Monday,
		Window:  domain.TimeWindow{Start: "09:00", End: "11:00"},
	})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestExecuteSlotFreeAfterCancellation(t *testing.T) {
	f := newFixture(t)

	first, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)

	require.NoError(t, f.bookings.Cancel(context.Background(), first.ID, domain.StatusPending, domain.RoleStudent, nil, fixedNow))

	second := f.request()
	second.StudentID = 8
	_, err = f.uc.Execute(context.Background(), second)
	assert.NoError(t, err)
}

func TestExecutePublishFailureKeepsBooking(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)

	stored, err := f.bookings.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestExecuteCollapsesDuplicateTopics(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.TopicIDs = []string{"algebra", " algebra ", "geometry"}

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"algebra", "geometry"}, resp.TopicIDs)
}

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, offeringCache.ErrCacheMiss
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// withStaleCache прогревает кэш и меняет ставки в источнике в обход кэша
func (f *fixture) withStaleCache(t *testing.T, rates []domain.ModeRate) {
	t.Helper()
	ctx := context.Background()

	cached := offeringCache.NewRepository(f.offerings, &mapStore{data: map[string][]byte{}}, time.Minute, logger.NewNop())
	_, err := cached.GetByID(ctx, f.offeringID)
	require.NoError(t, err)

	o, err := f.offerings.GetByID(ctx, f.offeringID)
	require.NoError(t, err)
	o.ModeRates = rates
	require.NoError(t, f.offerings.UpdatePricing(ctx, o))

	stale, err := cached.GetByID(ctx, f.offeringID)
	require.NoError(t, err)
	require.NotEqual(t, rates, stale.ModeRates)

	f.uc = NewUseCase(f.bookings, cached, memory.NewTxManager(f.store), f.publisher, f.metrics, time.UTC, logger.NewNop())
	f.uc.timeProvider = fixedTime{now: fixedNow}
}

func TestExecuteRejectsModeDisabledBehindStaleCache(t *testing.T) {
	f := newFixture(t)
	f.withStaleCache(t, []domain.ModeRate{{Mode: domain.ModeOnline, HourlyRate: 500, Enabled: false}})

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrModeUnavailable)
	assert.Equal(t, 1, f.metrics.rejected[reasonModeUnavailable])
	assert.Empty(t, f.publisher.events)

	active, err := f.bookings.GetActiveBySlot(context.Background(), domain.SlotKey{
		TutorID: 100,
		Day:     domain.Monday,
		Window:  domain.TimeWindow{Start: "09:00", End: "11:00"},
	})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestExecutePricesFromLockedOffering(t *testing.T) {
	f := newFixture(t)
	f.withStaleCache(t, []domain.ModeRate{{Mode: domain.ModeOnline, HourlyRate: 600, Enabled: true}})

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, 600.0, resp.HourlyRate)
	assert.Equal(t, 1200.0, resp.TotalPrice)
}
