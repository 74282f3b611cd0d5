package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrIdempotencyConflict возвращается при нарушении уникальности
	// idempotency_key: конкурентный запрос с тем же ключом успел раньше
	ErrIdempotencyConflict = errors.New("booking.repository: idempotency key already used")

	// ErrConflict возвращается при прочих нарушениях уникальных ограничений;
	// на границе API трактуется как недоступность слота
	ErrConflict = errors.New("booking.repository: constraint violation")

	// ErrSerialization возвращается при конфликте сериализуемых транзакций
	// (40001). Оборачивает исходную ошибку драйвера, чтобы менеджер
	// транзакций распознал конфликт и повторил транзакцию.
	ErrSerialization = errors.New("booking.repository: serialization conflict")

	// ErrNotPending возвращается, когда подтверждение/заказ невозможны,
	// потому что бронирование уже не в статусе payment_pending
	ErrNotPending = errors.New("booking.repository: booking is not payment_pending")

	// ErrCannotCancel возвращается, когда бронирование не может быть отменено
	ErrCannotCancel = errors.New("booking.repository: booking cannot be cancelled")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
