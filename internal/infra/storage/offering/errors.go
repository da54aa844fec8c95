package offering

import "errors"

var (
	// ErrOfferingNotFound возвращается, когда предложение не найдено
	ErrOfferingNotFound = errors.New("offering.repository: offering not found")

	// ErrDuplicateOffering возвращается, когда у тьютора уже есть предложение по предмету
	ErrDuplicateOffering = errors.New("offering.repository: duplicate offering for tutor and subject")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("offering.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("offering.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("offering.repository: failed to scan row")

	// ErrEncode возвращается при ошибке сериализации JSONB колонок
	ErrEncode = errors.New("offering.repository: failed to encode offering")
)
