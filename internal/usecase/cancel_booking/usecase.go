package cancel_booking

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	bookingRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
	"github.com/d1sq/BMS-BookingEngine/internal/service/notify"
)

// defaultCancelReason причина по умолчанию при отмене клиентом
const defaultCancelReason = "cancelled by customer"

// UseCase use case для отмены бронирования клиентом по токену
type UseCase struct {
	bookingRepo BookingRepository
	notifier    Notifier
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, notifier Notifier, logger Logger) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// Execute отменяет бронирование. Токен сравнивается за постоянное время,
// чтобы не раскрывать его побайтово через тайминг ответов.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%d", req.BookingID)

	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.CancelToken == "" {
		return nil, fmt.Errorf("%w: cancelToken is required", ErrInvalidInput)
	}

	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("CancelBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("CancelBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if subtle.ConstantTimeCompare([]byte(booking.CancelToken), []byte(req.CancelToken)) != 1 {
		uc.logger.Warn("CancelBooking: invalid cancel token for booking id=%d", booking.ID)
		return nil, ErrInvalidToken
	}

	if !booking.CanBeCancelled() {
		uc.logger.Warn("CancelBooking: booking id=%d has terminal status %s", booking.ID, booking.Status)
		return nil, ErrCannotCancel
	}

	reason := req.Reason
	if reason == "" {
		reason = defaultCancelReason
	}

	previousStatus := booking.Status
	if err := uc.bookingRepo.Cancel(ctx, booking.ID, reason); err != nil {
		if errors.Is(err, bookingRepo.ErrCannotCancel) {
			// Конкурирующий запрос перевел бронь в терминальный статус
			uc.logger.Warn("CancelBooking: booking id=%d became terminal concurrently", booking.ID)
			return nil, ErrCannotCancel
		}
		uc.logger.Error("CancelBooking: failed to cancel booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
	}

	uc.logger.Info("CancelBooking: cancelled booking id=%d", booking.ID)

	cancelled := *booking
	cancelled.Status = domain.StatusCancelled
	if err := uc.notifier.Submit(notify.FromBooking(&cancelled, previousStatus, "")); err != nil {
		uc.logger.Warn("CancelBooking: failed to enqueue notification for booking id=%d: %v", booking.ID, err)
	}

	return &Response{
		BookingID: booking.ID,
		Status:    string(domain.StatusCancelled),
	}, nil
}
