package get_available_slots

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrOfferingNotFound возвращается, когда предложение тьютора не найдено
	ErrOfferingNotFound = errors.New("get_available_slots: subject offering not found")

	// ErrModeUnavailable возвращается, когда способ обучения не предлагается тьютором
	ErrModeUnavailable = errors.New("get_available_slots: teaching mode is not available")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
