package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	"github.com/m04kA/SMC-TutorBooking/pkg/dbmetrics"
)

// ErrNotSupported возвращается при попытке выполнить SQL через фиктивную транзакцию
var ErrNotSupported = errors.New("memory: sql is not supported by in-memory storage")

// Store in-memory хранилище предложений и бронирований
// Используется при storage.driver = "memory" и в тестах use case'ов.
type Store struct {
	// txMu сериализует транзакции целиком
	txMu sync.Mutex

	mu             sync.RWMutex
	offerings      map[int64]*domain.SubjectOffering
	bookings       map[int64]*domain.Booking
	nextOfferingID int64
	nextBookingID  int64

	now func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		offerings: make(map[int64]*domain.SubjectOffering),
		bookings:  make(map[int64]*domain.Booking),
		now:       time.Now,
	}
}

// TxManager выполняет функции под эксклюзивной блокировкой хранилища
// Откат не поддерживается: изменения, сделанные до ошибки, остаются.
type TxManager struct {
	store *Store
}

// NewTxManager создает менеджер транзакций для хранилища
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Do выполняет fn в транзакции
func (m *TxManager) Do(ctx context.Context, fn func(txCtx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoSerializable выполняет fn в транзакции
func (m *TxManager) DoSerializable(ctx context.Context, fn func(txCtx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoReadOnly выполняет fn в транзакции
func (m *TxManager) DoReadOnly(ctx context.Context, fn func(txCtx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(txCtx context.Context) error) error {
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	return fn(dbmetrics.WithTx(ctx, memoryTx{}))
}

// memoryTx маркер транзакции в контексте
type memoryTx struct{}

func (memoryTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, ErrNotSupported
}

func (memoryTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, ErrNotSupported
}

func (memoryTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (memoryTx) Commit() error   { return nil }
func (memoryTx) Rollback() error { return nil }

func copyOffering(o *domain.SubjectOffering) *domain.SubjectOffering {
	c := *o
	c.SelectedTopics = append([]domain.TopicRef(nil), o.SelectedTopics...)
	c.ModeRates = append([]domain.ModeRate(nil), o.ModeRates...)
	if o.LegacyRates != nil {
		legacy := *o.LegacyRates
		c.LegacyRates = &legacy
	}
	return &c
}

func copyBooking(b *domain.Booking) *domain.Booking {
	c := *b
	c.TopicIDs = append([]string{}, b.TopicIDs...)
	if b.CancellationReason != nil {
		reason := *b.CancellationReason
		c.CancellationReason = &reason
	}
	if b.CancelledBy != nil {
		by := *b.CancelledBy
		c.CancelledBy = &by
	}
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		c.CancelledAt = &at
	}
	return &c
}
