package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrOfferingNotFound возвращается, когда предложение тьютора не найдено
	ErrOfferingNotFound = errors.New("create_booking: subject offering not found")

	// ErrModeUnavailable возвращается, когда способ обучения не предлагается тьютором
	ErrModeUnavailable = errors.New("create_booking: teaching mode is not available")

	// ErrNoAvailability возвращается, когда в выбранный день нет окна нужной длительности
	ErrNoAvailability = errors.New("create_booking: no availability for this day and duration")

	// ErrInvalidSlot возвращается, когда выбранное окно не входит в список подходящих
	ErrInvalidSlot = errors.New("create_booking: selected time slot is not eligible")

	// ErrInvalidContact возвращается при некорректном номере телефона
	ErrInvalidContact = errors.New("create_booking: invalid contact number")

	// ErrInvalidTopic возвращается, когда тема не входит в выбранные тьютором
	ErrInvalidTopic = errors.New("create_booking: topic is not offered")

	// ErrSlotConflict возвращается, когда слот уже занят активным бронированием
	ErrSlotConflict = errors.New("create_booking: slot is already booked")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
