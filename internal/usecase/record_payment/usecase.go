package record_payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	bookingRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
	businessRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/business"
)

// UseCase use case для фиксации оплаты, заявленной клиентом.
// Клиентский колбэк оптимистичный: мы проверяем подпись и запоминаем
// ID платежа, но статус бронирования меняет только вебхук шлюза.
type UseCase struct {
	bookingRepo  BookingRepository
	businessRepo BusinessRepository
	verify       SignatureVerifier
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	businessRepo BusinessRepository,
	verify SignatureVerifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		businessRepo: businessRepo,
		verify:       verify,
		logger:       logger,
	}
}

// Execute проверяет подпись платежа и сохраняет ID платежа у бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RecordPayment: booking=%d, order=%s", req.BookingID, req.OrderID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RecordPayment: validation failed: %v", err)
		return nil, err
	}

	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RecordPayment: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RecordPayment: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if booking.GatewayOrderID == nil || *booking.GatewayOrderID != req.OrderID {
		uc.logger.Warn("RecordPayment: order mismatch for booking id=%d", booking.ID)
		return nil, ErrOrderMismatch
	}

	business, err := uc.businessRepo.GetBusiness(ctx, booking.BusinessID)
	if err != nil {
		if errors.Is(err, businessRepo.ErrBusinessNotFound) {
			uc.logger.Warn("RecordPayment: business id=%d not found", booking.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("RecordPayment: failed to get business id=%d: %v", booking.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	if !uc.verify(req.OrderID, req.PaymentID, req.Signature, business.GatewayKeySecret) {
		// Неверная подпись - потенциальная подмена платежа, логируем отдельно
		uc.logger.Error("RecordPayment: SECURITY invalid payment signature for booking id=%d, order=%s, payment=%s",
			booking.ID, req.OrderID, req.PaymentID)
		return nil, ErrInvalidSignature
	}

	if err := uc.bookingRepo.SetPaymentRef(ctx, booking.ID, req.PaymentID); err != nil {
		uc.logger.Error("RecordPayment: failed to store payment ref for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to store payment ref: %v", ErrInternal, err)
	}

	uc.logger.Info("RecordPayment: recorded payment %s for booking id=%d, awaiting webhook confirmation",
		req.PaymentID, booking.ID)

	return &Response{
		BookingID:     booking.ID,
		Status:        string(booking.Status),
		PaymentStatus: string(domain.PaymentPending),
	}, nil
}

func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.OrderID == "" {
		return fmt.Errorf("%w: orderID is required", ErrInvalidInput)
	}
	if req.PaymentID == "" {
		return fmt.Errorf("%w: paymentID is required", ErrInvalidInput)
	}
	if req.Signature == "" {
		return fmt.Errorf("%w: signature is required", ErrInvalidInput)
	}
	return nil
}
