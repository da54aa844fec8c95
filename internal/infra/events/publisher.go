package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
)

var (
	// ErrEncodeEvent возвращается при ошибке сериализации события
	ErrEncodeEvent = errors.New("events: failed to encode event")

	// ErrPublish возвращается при ошибке записи в Kafka
	ErrPublish = errors.New("events: failed to publish event")
)

// Event событие жизненного цикла бронирования
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Booking    BookingSnapshot `json:"booking"`
	// PreviousStatus заполняется для booking.status_changed
	PreviousStatus string `json:"previousStatus,omitempty"`
}

// BookingSnapshot состояние бронирования на момент события
type BookingSnapshot struct {
	ID                int64    `json:"id"`
	StudentID         int64    `json:"studentId"`
	TutorID           int64    `json:"tutorId"`
	SubjectOfferingID int64    `json:"subjectOfferingId"`
	TopicIDs          []string `json:"topicIds"`
	Day               string   `json:"day"`
	TimeSlot          string   `json:"timeSlot"`
	DurationHours     int      `json:"duration"`
	Mode              string   `json:"learningMethod"`
	TotalPrice        float64  `json:"totalPrice"`
	Status            string   `json:"status"`
	SessionDate       string   `json:"sessionDate"`
	CancelledBy       *string  `json:"cancelledBy,omitempty"`
}

// NewBookingCreated создает событие booking.created
func NewBookingCreated(b *domain.Booking, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeBookingCreated,
		OccurredAt: at.UTC(),
		Booking:    snapshotOf(b),
	}
}

// NewBookingStatusChanged создает событие booking.status_changed
func NewBookingStatusChanged(b *domain.Booking, previous domain.BookingStatus, at time.Time) Event {
	return Event{
		ID:             uuid.NewString(),
		Type:           TypeBookingStatusChanged,
		OccurredAt:     at.UTC(),
		Booking:        snapshotOf(b),
		PreviousStatus: string(previous),
	}
}

func snapshotOf(b *domain.Booking) BookingSnapshot {
	s := BookingSnapshot{
		ID:                b.ID,
		StudentID:         b.StudentID,
		TutorID:           b.TutorID,
		SubjectOfferingID: b.SubjectOfferingID,
		TopicIDs:          b.TopicIDs,
		Day:               b.Day.String(),
		TimeSlot:          b.Window.String(),
		DurationHours:     b.DurationHours,
		Mode:              string(b.Mode),
		TotalPrice:        b.TotalPrice,
		Status:            string(b.Status),
		SessionDate:       b.SessionDate.Format(domain.DateFormat),
	}
	if b.CancelledBy != nil {
		by := string(*b.CancelledBy)
		s.CancelledBy = &by
	}
	return s
}

// Publisher публикует события и освобождает соединения при остановке
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// messageWriter абстракция над kafka.Writer
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher публикует события в топик Kafka
// Ключ сообщения - ID бронирования, события одного бронирования попадают в одну партицию.
type KafkaPublisher struct {
	writer       messageWriter
	writeTimeout time.Duration
}

// NewKafkaPublisher создает publisher для списка брокеров и топика
func NewKafkaPublisher(brokers []string, topic string, writeTimeout time.Duration) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, writeTimeout)
}

func newKafkaPublisher(writer messageWriter, writeTimeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, writeTimeout: writeTimeout}
}

// Publish синхронно записывает событие
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeEvent, err)
	}

	if p.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.writeTimeout)
		defer cancel()
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.Booking.ID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s id=%s: %v", ErrPublish, event.Type, event.ID, err)
	}
	return nil
}

// Close закрывает writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher используется, когда брокеры не настроены
type NopPublisher struct{}

// Publish ничего не делает
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close ничего не делает
func (NopPublisher) Close() error { return nil }
