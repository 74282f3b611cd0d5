package record_payment

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("record_payment: booking not found")

	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("record_payment: business not found")

	// ErrOrderMismatch возвращается, когда переданный заказ не соответствует
	// заказу бронирования
	ErrOrderMismatch = errors.New("record_payment: order does not match booking")

	// ErrInvalidSignature возвращается при неверной подписи платежа
	ErrInvalidSignature = errors.New("record_payment: invalid payment signature")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("record_payment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("record_payment: internal error")
)
