package open_payment

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("open_payment: booking not found")

	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("open_payment: business not found")

	// ErrNotPaymentPending возвращается, когда бронирование не ожидает оплаты
	ErrNotPaymentPending = errors.New("open_payment: booking is not awaiting payment")

	// ErrReservationExpired возвращается, когда окно удержания слота истекло
	ErrReservationExpired = errors.New("open_payment: reservation has expired")

	// ErrPaymentsNotAccepted возвращается, когда бизнес не принимает онлайн-оплату
	ErrPaymentsNotAccepted = errors.New("open_payment: business does not accept online payments")

	// ErrGatewayUnavailable возвращается при ошибке платежного шлюза
	ErrGatewayUnavailable = errors.New("open_payment: payment gateway unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("open_payment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("open_payment: internal error")
)
