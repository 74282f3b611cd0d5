package create_booking

import (
	"errors"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
)

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("create_booking: business not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrInvalidDate возвращается при некорректной дате бронирования
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrInvalidTimeSlot возвращается, когда время начала не совпадает
	// с сеткой слотов или выходит за рабочие часы
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrSlotNotAvailable возвращается, когда слот занят; вместе с ним
	// клиенту отдаются альтернативные слоты через SlotUnavailableError
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrDuplicateRequest возвращается при повторной заявке с теми же
	// данными в пределах окна защиты от дублей
	ErrDuplicateRequest = errors.New("create_booking: duplicate request")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// SlotUnavailableError несет альтернативные свободные слоты,
// которые отдаются клиенту вместе с отказом
type SlotUnavailableError struct {
	Alternatives []domain.AvailableSlot
}

// Error реализует интерфейс error
func (e *SlotUnavailableError) Error() string {
	return ErrSlotNotAvailable.Error()
}

// Unwrap позволяет errors.Is находить ErrSlotNotAvailable
func (e *SlotUnavailableError) Unwrap() error {
	return ErrSlotNotAvailable
}
