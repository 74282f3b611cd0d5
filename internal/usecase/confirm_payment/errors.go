package confirm_payment

import "errors"

var (
	// ErrBookingNotFound возвращается, когда заказ не связан с бронированием
	ErrBookingNotFound = errors.New("confirm_payment: booking not found")

	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("confirm_payment: business not found")

	// ErrInvalidSignature возвращается при неверной подписи вебхука
	ErrInvalidSignature = errors.New("confirm_payment: invalid webhook signature")

	// ErrAmountMismatch возвращается, когда сумма платежа не совпадает
	// с ценой услуги
	ErrAmountMismatch = errors.New("confirm_payment: payment amount mismatch")

	// ErrUnsupportedEvent возвращается для событий, которые движок не обрабатывает
	ErrUnsupportedEvent = errors.New("confirm_payment: unsupported event type")

	// ErrNotConfirmable возвращается, когда бронирование нельзя подтвердить:
	// оно отменено или окно удержания истекло
	ErrNotConfirmable = errors.New("confirm_payment: booking cannot be confirmed")

	// ErrInvalidPayload возвращается при некорректном теле вебхука
	ErrInvalidPayload = errors.New("confirm_payment: invalid webhook payload")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("confirm_payment: internal error")
)
