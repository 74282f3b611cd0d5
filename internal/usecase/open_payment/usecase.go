package open_payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	bookingRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
	businessRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/business"
	"github.com/d1sq/BMS-BookingEngine/internal/integrations/paygate"
)

// defaultCurrency валюта заказов платежного шлюза
const defaultCurrency = "INR"

// UseCase use case для открытия платежного заказа по бронированию
type UseCase struct {
	bookingRepo  BookingRepository
	businessRepo BusinessRepository
	gateway      GatewayClient
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	businessRepo BusinessRepository,
	gateway GatewayClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		businessRepo: businessRepo,
		gateway:      gateway,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute открывает заказ в платежном шлюзе для бронирования в ожидании
// оплаты. Повторный вызов возвращает уже открытый заказ, не создавая новый.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("OpenPayment: booking=%d", req.BookingID)

	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("OpenPayment: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("OpenPayment: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if !booking.RequiresPayment() {
		uc.logger.Warn("OpenPayment: booking id=%d has status %s", booking.ID, booking.Status)
		return nil, ErrNotPaymentPending
	}

	now := uc.timeProvider.Now()
	if booking.IsReservationExpired(now) {
		uc.logger.Warn("OpenPayment: reservation expired for booking id=%d", booking.ID)
		return nil, ErrReservationExpired
	}

	business, err := uc.businessRepo.GetBusiness(ctx, booking.BusinessID)
	if err != nil {
		if errors.Is(err, businessRepo.ErrBusinessNotFound) {
			uc.logger.Warn("OpenPayment: business id=%d not found", booking.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("OpenPayment: failed to get business id=%d: %v", booking.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	if !business.AcceptsOnlinePayments() {
		uc.logger.Warn("OpenPayment: business id=%d does not accept online payments", business.ID)
		return nil, ErrPaymentsNotAccepted
	}

	amount := amountMinor(booking.ServicePrice)

	// Повторное открытие: возвращаем существующий заказ
	if booking.GatewayOrderID != nil && *booking.GatewayOrderID != "" {
		uc.logger.Info("OpenPayment: booking id=%d already has order %s", booking.ID, *booking.GatewayOrderID)
		return uc.toResponse(booking, *booking.GatewayOrderID, amount, business.GatewayKeyID), nil
	}

	order, err := uc.gateway.CreateOrder(ctx, business.GatewayKeyID, business.GatewayKeySecret, &paygate.CreateOrderRequest{
		Amount:   amount,
		Currency: defaultCurrency,
		Receipt:  booking.PublicRef,
		Notes: map[string]string{
			"bookingId": strconv.FormatInt(booking.ID, 10),
		},
	})
	if err != nil {
		uc.logger.Error("OpenPayment: failed to create gateway order for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if err := uc.bookingRepo.SetGatewayOrder(ctx, booking.ID, order.ID); err != nil {
		if errors.Is(err, bookingRepo.ErrNotPending) {
			// Конкурирующий запрос успел первым: читаем, какой заказ закрепился
			refreshed, getErr := uc.bookingRepo.GetByID(ctx, booking.ID)
			if getErr == nil && refreshed.GatewayOrderID != nil && refreshed.RequiresPayment() {
				return uc.toResponse(refreshed, *refreshed.GatewayOrderID, amount, business.GatewayKeyID), nil
			}
			return nil, ErrNotPaymentPending
		}
		uc.logger.Error("OpenPayment: failed to store order id for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to store order id: %v", ErrInternal, err)
	}

	uc.logger.Info("OpenPayment: opened order %s for booking id=%d, amount=%d", order.ID, booking.ID, amount)
	return uc.toResponse(booking, order.ID, amount, business.GatewayKeyID), nil
}

func (uc *UseCase) toResponse(b *domain.Booking, orderID string, amount int64, keyID string) *Response {
	var email string
	if b.CustomerEmail != nil {
		email = *b.CustomerEmail
	}
	return &Response{
		OrderID:       orderID,
		Amount:        amount,
		Currency:      defaultCurrency,
		KeyID:         keyID,
		ReservedUntil: b.ReservedUntil,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		CustomerEmail: email,
	}
}

// amountMinor конвертирует цену в минимальные единицы валюты
func amountMinor(price float64) int64 {
	return int64(math.Round(price * 100))
}
