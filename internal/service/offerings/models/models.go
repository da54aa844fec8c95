package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
)

// TopicDTO тема предмета
type TopicDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ModeRateDTO ставка способа обучения
type ModeRateDTO struct {
	Mode       string  `json:"mode"`
	HourlyRate float64 `json:"hourlyRate"`
	Enabled    bool    `json:"enabled"`
}

// LegacyRatesDTO старые ставки по видам занятий
type LegacyRatesDTO struct {
	Individual float64 `json:"individual"`
	Group      float64 `json:"group"`
	Online     float64 `json:"online"`
}

// Availability расписание в wire-формате: день недели -> окна "HH:MM - HH:MM"
type Availability map[string][]string

// CreateOfferingRequest запрос на создание предложения
type CreateOfferingRequest struct {
	UserID         int64           `json:"-"`
	SubjectID      int64           `json:"subjectId"`
	SubjectName    string          `json:"subjectName"`
	SelectedTopics []TopicDTO      `json:"selectedTopics"`
	ModeRates      []ModeRateDTO   `json:"modeRates"`
	Availability   Availability    `json:"availability,omitempty"`
	LegacyRates    *LegacyRatesDTO `json:"legacyRates,omitempty"`
}

// UpdateRatesRequest запрос на изменение тем и ставок
// Nil поле означает "оставить как есть"
type UpdateRatesRequest struct {
	UserID         int64           `json:"-"`
	SelectedTopics []TopicDTO      `json:"selectedTopics,omitempty"`
	ModeRates      []ModeRateDTO   `json:"modeRates,omitempty"`
	LegacyRates    *LegacyRatesDTO `json:"legacyRates,omitempty"`
}

// ReplaceAvailabilityRequest запрос на замену окон перечисленных дней
// Дни, которых нет в запросе, не меняются
type ReplaceAvailabilityRequest struct {
	UserID       int64        `json:"-"`
	Availability Availability `json:"availability"`
}

// AddWindowRequest запрос на добавление окна в день
type AddWindowRequest struct {
	UserID   int64  `json:"-"`
	Day      string `json:"-"`
	TimeSlot string `json:"timeSlot"`
}

// UpdateWindowRequest запрос на изменение границ окна
type UpdateWindowRequest struct {
	UserID int64   `json:"-"`
	Day    string  `json:"-"`
	Index  int     `json:"-"`
	Start  *string `json:"start,omitempty"`
	End    *string `json:"end,omitempty"`
}

// RemoveWindowRequest запрос на удаление окна
type RemoveWindowRequest struct {
	UserID int64
	Day    string
	Index  int
}

// OfferingResponse ответ с предложением
type OfferingResponse struct {
	ID             int64           `json:"id"`
	TutorID        int64           `json:"tutorId"`
	SubjectID      int64           `json:"subjectId"`
	SubjectName    string          `json:"subjectName"`
	SelectedTopics []TopicDTO      `json:"selectedTopics"`
	ModeRates      []ModeRateDTO   `json:"modeRates"`
	Availability   Availability    `json:"availability"`
	LegacyRates    *LegacyRatesDTO `json:"legacyRates,omitempty"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

// OfferingListResponse список предложений тьютора
type OfferingListResponse struct {
	Offerings []*OfferingResponse `json:"offerings"`
}

// DayWindowsResponse окна одного дня после изменения
type DayWindowsResponse struct {
	OfferingID int64    `json:"offeringId"`
	Day        string   `json:"day"`
	Windows    []string `json:"windows"`
}

// ToDomainTopics конвертирует темы в доменную модель
func ToDomainTopics(topics []TopicDTO) []domain.TopicRef {
	result := make([]domain.TopicRef, 0, len(topics))
	for _, t := range topics {
		result = append(result, domain.TopicRef{ID: t.ID, Name: t.Name})
	}
	return result
}

// ToDomainModeRates конвертирует ставки в доменную модель
func ToDomainModeRates(rates []ModeRateDTO) ([]domain.ModeRate, error) {
	result := make([]domain.ModeRate, 0, len(rates))
	for _, r := range rates {
		mode, err := domain.ParseTeachingMode(r.Mode)
		if err != nil {
			return nil, err
		}
		result = append(result, domain.ModeRate{Mode: mode, HourlyRate: r.HourlyRate, Enabled: r.Enabled})
	}
	return result, nil
}

// ToDomainLegacyRates конвертирует legacy ставки, nil остается nil
func ToDomainLegacyRates(l *LegacyRatesDTO) *domain.LegacyRates {
	if l == nil {
		return nil
	}
	return &domain.LegacyRates{Individual: l.Individual, Group: l.Group, Online: l.Online}
}

// ToDomainDays разбирает расписание, результат упорядочен по дням недели
func (a Availability) ToDomainDays() ([]domain.DayAvailability, error) {
	result := make([]domain.DayAvailability, 0, len(a))
	for name, slots := range a {
		day, err := domain.ParseWeekDay(name)
		if err != nil {
			return nil, err
		}

		windows := make([]domain.TimeWindow, 0, len(slots))
		for _, slot := range slots {
			w, err := domain.ParseTimeWindow(slot)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", day, err)
			}
			windows = append(windows, w)
		}
		result = append(result, domain.DayAvailability{Day: day, Windows: windows})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Day < result[j].Day })

	for i := 1; i < len(result); i++ {
		if result[i].Day == result[i-1].Day {
			return nil, fmt.Errorf("%w: day %s listed twice", domain.ErrInvalidInput, result[i].Day)
		}
	}
	return result, nil
}

// FromDomainSchedule конвертирует расписание, все семь дней присутствуют
func FromDomainSchedule(s domain.WeeklySchedule) Availability {
	result := make(Availability, 7)
	for _, d := range s.Days() {
		result[d.Day.String()] = FromDomainWindows(d.Windows)
	}
	return result
}

// FromDomainWindows конвертирует окна в wire-формат
func FromDomainWindows(windows []domain.TimeWindow) []string {
	result := make([]string, 0, len(windows))
	for _, w := range windows {
		result = append(result, w.String())
	}
	return result
}

// FromDomainOffering конвертирует доменную модель в ответ
func FromDomainOffering(o *domain.SubjectOffering) *OfferingResponse {
	topics := make([]TopicDTO, 0, len(o.SelectedTopics))
	for _, t := range o.SelectedTopics {
		topics = append(topics, TopicDTO{ID: t.ID, Name: t.Name})
	}

	rates := make([]ModeRateDTO, 0, len(o.ModeRates))
	for _, r := range o.ModeRates {
		rates = append(rates, ModeRateDTO{Mode: string(r.Mode), HourlyRate: r.HourlyRate, Enabled: r.Enabled})
	}

	var legacy *LegacyRatesDTO
	if o.LegacyRates != nil {
		legacy = &LegacyRatesDTO{
			Individual: o.LegacyRates.Individual,
			Group:      o.LegacyRates.Group,
			Online:     o.LegacyRates.Online,
		}
	}

	return &OfferingResponse{
		ID:             o.ID,
		TutorID:        o.TutorID,
		SubjectID:      o.SubjectID,
		SubjectName:    o.SubjectName,
		SelectedTopics: topics,
		ModeRates:      rates,
		Availability:   FromDomainSchedule(o.Availability),
		LegacyRates:    legacy,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      o.UpdatedAt.Format(time.RFC3339),
	}
}

// FromDomainOfferingList конвертирует список предложений
func FromDomainOfferingList(offerings []*domain.SubjectOffering) *OfferingListResponse {
	result := make([]*OfferingResponse, 0, len(offerings))
	for _, o := range offerings {
		result = append(result, FromDomainOffering(o))
	}
	return &OfferingListResponse{Offerings: result}
}
