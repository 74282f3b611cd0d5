package bookings

import "errors"

var (
	// ErrBookingNotFound бронирование не найдено
	ErrBookingNotFound = errors.New("bookings service: booking not found")

	// ErrInvalidToken токен не совпадает с токеном бронирования
	ErrInvalidToken = errors.New("bookings service: invalid token")

	// ErrBookingCancelled бронирование отменено, экспорт события невозможен
	ErrBookingCancelled = errors.New("bookings service: booking is cancelled")

	// ErrInternal внутренняя ошибка сервиса
	ErrInternal = errors.New("bookings service: internal error")
)
