package offering

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
)

// Модели JSONB колонок subject_offerings

type topicRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type modeRateRow struct {
	Mode       domain.TeachingMode `json:"mode"`
	HourlyRate float64             `json:"hourlyRate"`
	Enabled    bool                `json:"enabled"`
}

type dayRow struct {
	Day     domain.WeekDay      `json:"day"`
	Windows []domain.TimeWindow `json:"windows"`
}

type legacyRatesRow struct {
	Individual float64 `json:"individual"`
	Group      float64 `json:"group"`
	Online     float64 `json:"online"`
}

// snapshot полное JSON представление предложения, используется кэшем
type snapshot struct {
	ID             int64           `json:"id"`
	TutorID        int64           `json:"tutorId"`
	SubjectID      int64           `json:"subjectId"`
	SubjectName    string          `json:"subjectName"`
	SelectedTopics []topicRow      `json:"selectedTopics"`
	ModeRates      []modeRateRow   `json:"modeRates"`
	Availability   []dayRow        `json:"availability"`
	LegacyRates    *legacyRatesRow `json:"legacyRates,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Encode сериализует предложение в JSON
func Encode(o *domain.SubjectOffering) ([]byte, error) {
	data, err := json.Marshal(snapshot{
		ID:             o.ID,
		TutorID:        o.TutorID,
		SubjectID:      o.SubjectID,
		SubjectName:    o.SubjectName,
		SelectedTopics: toTopicRows(o.SelectedTopics),
		ModeRates:      toModeRateRows(o.ModeRates),
		Availability:   toDayRows(o.Availability),
		LegacyRates:    toLegacyRow(o.LegacyRates),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return data, nil
}

// Decode восстанавливает предложение из JSON, созданного Encode
func Decode(data []byte) (*domain.SubjectOffering, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %v", ErrScanRow, err)
	}

	schedule, err := fromDayRows(s.Availability)
	if err != nil {
		return nil, err
	}

	return &domain.SubjectOffering{
		ID:             s.ID,
		TutorID:        s.TutorID,
		SubjectID:      s.SubjectID,
		SubjectName:    s.SubjectName,
		SelectedTopics: fromTopicRows(s.SelectedTopics),
		ModeRates:      fromModeRateRows(s.ModeRates),
		Availability:   schedule,
		LegacyRates:    fromLegacyRow(s.LegacyRates),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}, nil
}

func toTopicRows(topics []domain.TopicRef) []topicRow {
	rows := make([]topicRow, 0, len(topics))
	for _, t := range topics {
		rows = append(rows, topicRow{ID: t.ID, Name: t.Name})
	}
	return rows
}

func fromTopicRows(rows []topicRow) []domain.TopicRef {
	topics := make([]domain.TopicRef, 0, len(rows))
	for _, r := range rows {
		topics = append(topics, domain.TopicRef{ID: r.ID, Name: r.Name})
	}
	return topics
}

func toModeRateRows(rates []domain.ModeRate) []modeRateRow {
	rows := make([]modeRateRow, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, modeRateRow{Mode: r.Mode, HourlyRate: r.HourlyRate, Enabled: r.Enabled})
	}
	return rows
}

func fromModeRateRows(rows []modeRateRow) []domain.ModeRate {
	rates := make([]domain.ModeRate, 0, len(rows))
	for _, r := range rows {
		rates = append(rates, domain.ModeRate{Mode: r.Mode, HourlyRate: r.HourlyRate, Enabled: r.Enabled})
	}
	return rates
}

func toDayRows(s domain.WeeklySchedule) []dayRow {
	days := s.Days()
	rows := make([]dayRow, 0, len(days))
	for _, d := range days {
		rows = append(rows, dayRow{Day: d.Day, Windows: d.Windows})
	}
	return rows
}

func fromDayRows(rows []dayRow) (domain.WeeklySchedule, error) {
	days := make([]domain.DayAvailability, 0, len(rows))
	for _, r := range rows {
		days = append(days, domain.DayAvailability{Day: r.Day, Windows: r.Windows})
	}
	schedule, err := domain.NewWeeklySchedule(days...)
	if err != nil {
		return domain.WeeklySchedule{}, fmt.Errorf("%w: stored availability is invalid: %v", ErrScanRow, err)
	}
	return schedule, nil
}

func toLegacyRow(l *domain.LegacyRates) *legacyRatesRow {
	if l == nil {
		return nil
	}
	return &legacyRatesRow{Individual: l.Individual, Group: l.Group, Online: l.Online}
}

func fromLegacyRow(r *legacyRatesRow) *domain.LegacyRates {
	if r == nil {
		return nil
	}
	return &domain.LegacyRates{Individual: r.Individual, Group: r.Group, Online: r.Online}
}
