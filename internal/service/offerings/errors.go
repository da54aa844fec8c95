package offerings

import "errors"

var (
	// ErrOfferingNotFound возвращается, когда предложение не найдено
	ErrOfferingNotFound = errors.New("offerings: offering not found")

	// ErrWindowNotFound возвращается, когда окна с таким индексом нет
	ErrWindowNotFound = errors.New("offerings: window not found")

	// ErrAccessDenied возвращается, когда пользователь не является тьютором предложения
	ErrAccessDenied = errors.New("offerings: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("offerings: invalid input")

	// ErrInvalidWindow возвращается, когда окно пустое или пересекает соседнее
	ErrInvalidWindow = errors.New("offerings: invalid window")

	// ErrCapacityExceeded возвращается, когда в дне уже максимум окон
	ErrCapacityExceeded = errors.New("offerings: day window capacity exceeded")

	// ErrOfferingAlreadyExists возвращается, когда у тьютора уже есть предложение по предмету
	ErrOfferingAlreadyExists = errors.New("offerings: offering already exists")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("offerings: internal error")
)
