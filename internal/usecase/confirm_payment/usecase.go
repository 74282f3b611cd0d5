package confirm_payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	bookingRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
	businessRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/business"
	"github.com/d1sq/BMS-BookingEngine/internal/service/notify"
)

// UseCase use case подтверждения бронирования вебхуком платежного шлюза.
// Вебхук - единственный авторитетный источник подтверждения: клиентский
// колбэк только фиксирует ID платежа.
type UseCase struct {
	bookingRepo  BookingRepository
	businessRepo BusinessRepository
	verify       WebhookVerifier
	notifier     Notifier
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	businessRepo BusinessRepository,
	verify WebhookVerifier,
	notifier Notifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		businessRepo: businessRepo,
		verify:       verify,
		notifier:     notifier,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute обрабатывает вебхук. Повторная доставка того же события
// безопасна: подтверждение выполняется условным обновлением, уведомление
// уходит только при фактической смене статуса.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	var event webhookEvent
	if err := json.Unmarshal(req.Body, &event); err != nil {
		uc.logger.Warn("ConfirmPayment: failed to parse webhook body: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if event.Event != eventPaymentCaptured {
		uc.logger.Info("ConfirmPayment: ignoring event %q", event.Event)
		return nil, ErrUnsupportedEvent
	}

	payment := event.Payload.Payment.Entity
	if payment.OrderID == "" || payment.ID == "" {
		uc.logger.Warn("ConfirmPayment: webhook payload missing order or payment id")
		return nil, fmt.Errorf("%w: missing order or payment id", ErrInvalidPayload)
	}

	uc.logger.Info("ConfirmPayment: order=%s, payment=%s, amount=%d", payment.OrderID, payment.ID, payment.Amount)

	booking, err := uc.bookingRepo.GetByGatewayOrderID(ctx, payment.OrderID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("ConfirmPayment: no booking for order %s", payment.OrderID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("ConfirmPayment: failed to get booking for order %s: %v", payment.OrderID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	business, err := uc.businessRepo.GetBusiness(ctx, booking.BusinessID)
	if err != nil {
		if errors.Is(err, businessRepo.ErrBusinessNotFound) {
			uc.logger.Warn("ConfirmPayment: business id=%d not found", booking.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("ConfirmPayment: failed to get business id=%d: %v", booking.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	// Подпись проверяется секретом вебхука конкретного бизнеса
	if !uc.verify(req.Body, req.Signature, business.WebhookSecret) {
		uc.logger.Error("ConfirmPayment: SECURITY invalid webhook signature for order %s, booking id=%d",
			payment.OrderID, booking.ID)
		return nil, ErrInvalidSignature
	}

	expected := int64(math.Round(booking.ServicePrice * 100))
	if payment.Amount != expected {
		uc.logger.Error("ConfirmPayment: SECURITY amount mismatch for booking id=%d: got %d, expected %d",
			booking.ID, payment.Amount, expected)
		return nil, ErrAmountMismatch
	}

	now := uc.timeProvider.Now()
	previousStatus := booking.Status

	if err := uc.bookingRepo.Confirm(ctx, booking.ID, payment.ID, now); err != nil {
		if errors.Is(err, bookingRepo.ErrNotPending) {
			// Либо повторная доставка вебхука, либо бронь уже нельзя подтвердить
			refreshed, getErr := uc.bookingRepo.GetByID(ctx, booking.ID)
			if getErr == nil && refreshed.Status == domain.StatusConfirmed {
				uc.logger.Info("ConfirmPayment: booking id=%d already confirmed, webhook replay", booking.ID)
				return &Response{
					BookingID:        booking.ID,
					Status:           string(refreshed.Status),
					AlreadyConfirmed: true,
				}, nil
			}
			uc.logger.Warn("ConfirmPayment: booking id=%d cannot be confirmed (status=%s, expired=%v)",
				booking.ID, booking.Status, booking.IsReservationExpired(now))
			return nil, ErrNotConfirmable
		}
		uc.logger.Error("ConfirmPayment: failed to confirm booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to confirm booking: %v", ErrInternal, err)
	}

	confirmed, err := uc.bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		uc.logger.Error("ConfirmPayment: failed to re-read booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to re-read booking: %v", ErrInternal, err)
	}

	uc.logger.Info("ConfirmPayment: confirmed booking id=%d with payment %s", confirmed.ID, payment.ID)

	if err := uc.notifier.Submit(notify.FromBooking(confirmed, previousStatus, "")); err != nil {
		uc.logger.Warn("ConfirmPayment: failed to enqueue notification for booking id=%d: %v", confirmed.ID, err)
	}

	return &Response{
		BookingID: confirmed.ID,
		Status:    string(confirmed.Status),
	}, nil
}
